// Package router provides path-and-method dispatch for the hxdemo pipeline.
// It supports typed path parameters, global and per-route middleware, sub-routers,
// startup conflict detection, and graceful shutdown.
package router

import (
	"github.com/Suhaibinator/hxdemo/pkg/common"
	"go.uber.org/zap"
)

// RouterConfig defines the global configuration for the router.
// It includes settings for logging, request body limits, and middleware.
type RouterConfig struct {
	Logger            *zap.Logger         // Logger for all router operations
	GlobalMaxBodySize int64               // Maximum request body size in bytes, 0 for no limit
	Middlewares       []common.Middleware // Global middlewares, first is outermost
}

// SubRouterConfig defines a group of routes with a common path prefix.
// This allows for organizing routes into logical groups and applying shared middleware.
type SubRouterConfig struct {
	PathPrefix  string              // Common path prefix for all routes in this sub-router
	Routes      []RouteConfig       // Routes in this sub-router
	Middlewares []common.Middleware // Middlewares applied to all routes in this sub-router
}

// RouteConfig defines a single route.
type RouteConfig struct {
	Path        string              // Route pattern, e.g. "/demo/counter/{direction:str}"
	Methods     []string            // HTTP methods this route handles
	Handler     common.HandlerFunc  // Terminal handler
	Middlewares []common.Middleware // Middlewares applied to this specific route
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method  string
	Pattern string
}

// Middleware is an alias for common.Middleware.
type Middleware = common.Middleware
