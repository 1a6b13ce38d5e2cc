// Package web is a thin layer over gin that lets handlers return errors and
// share one response shape across the API.
package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler is the signature every API handler implements.
type Handler func(c *Context) error

// Middleware wraps a Handler with extra behaviour (auth, validation ...).
type Middleware func(handler Handler) Handler

// App is the entrypoint into the application. It embeds the gin engine so
// raw gin routes (static files, health checks) can still be registered.
type App struct {
	*gin.Engine
	log *log.Logger
	mw  []Middleware
}

// NewApp creates an App with gin's recovery and request logger installed.
func NewApp(log *log.Logger, mw ...Middleware) *App {
	engine := gin.New()
	engine.Use(gin.Recovery(), gin.Logger())

	return &App{
		Engine: engine,
		log:    log,
		mw:     mw,
	}
}

// Log returns the application logger.
func (a *App) Log() *log.Logger {
	return a.log
}

// Handle mounts handler for the given method and path. Route specific
// middleware runs first, then the application wide middleware.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	a.Engine.Handle(method, path, func(gc *gin.Context) {
		c := NewContext(gc, a.log)
		if err := handler(c); err != nil {
			a.log.Printf("%s %s : unhandled error : %v", method, path, err)
			_ = c.RespondError(err)
		}
	})
}

func (a *App) Get(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, handler, mw...)
}

func (a *App) Post(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, handler, mw...)
}

func (a *App) Put(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPut, path, handler, mw...)
}

func (a *App) Patch(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPatch, path, handler, mw...)
}

func (a *App) Delete(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodDelete, path, handler, mw...)
}

// wrapMiddleware applies mw so that the first element is the outermost.
func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}

	return handler
}
