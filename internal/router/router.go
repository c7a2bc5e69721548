package router

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/notify"
)

var ErrUnknownRoute = errors.New("unknown route")

type Route string

const (
	Home      Route = "/"
	Login     Route = "/login"
	Signup    Route = "/signup"
	Dashboard Route = "/dashboard"
	Create    Route = "/create"
	Notes     Route = "/notes"
	Update    Route = "/update/:id"
	Community Route = "/community"
)

var routes = []Route{Home, Login, Signup, Dashboard, Create, Notes, Update, Community}

// Routes returns the route table in declaration order.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Protected reports whether the route needs an authenticated session.
func (r Route) Protected() bool {
	switch r {
	case Dashboard, Create, Notes, Update:
		return true
	}
	return false
}

// Match resolves a concrete path such as "/update/42" to its route and
// parameters.
func Match(path string) (Route, map[string]string, error) {
	path = normalize(path)
	parts := split(path)

	for _, route := range routes {
		pattern := split(string(route))
		if len(pattern) != len(parts) {
			continue
		}

		params := map[string]string{}
		matched := true
		for i, segment := range pattern {
			if name, ok := strings.CutPrefix(segment, ":"); ok {
				if len(parts[i]) == 0 {
					matched = false
					break
				}
				params[name] = parts[i]
				continue
			}
			if segment != parts[i] {
				matched = false
				break
			}
		}

		if matched {
			return route, params, nil
		}
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
}

// Path fills the route's parameters. Missing parameters are left empty.
func Path(route Route, params map[string]string) string {
	segments := split(string(route))
	for i, segment := range segments {
		if name, ok := strings.CutPrefix(segment, ":"); ok {
			segments[i] = params[name]
		}
	}
	return "/" + strings.Join(segments, "/")
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if len(trimmed) == 0 {
		return []string{}
	}
	return strings.Split(trimmed, "/")
}

// Navigator moves the application to a path.
type Navigator interface {
	Navigate(path string) error
}

type Location struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Router keeps the navigation history and tells listeners about every move.
// Protected routes redirect to Login while the session is unauthenticated.
type Router struct {
	mu            sync.Mutex
	history       []Location
	authenticated func() bool
	bus           *notify.Bus
}

var _ Navigator = (*Router)(nil)

// New returns a router positioned at Home. authenticated may be nil, in which
// case no route is guarded.
func New(authenticated func() bool) *Router {
	return &Router{
		history:       []Location{{Route: Home, Path: "/", Params: map[string]string{}}},
		authenticated: authenticated,
		bus:           notify.NewBus(),
	}
}

func (r *Router) Navigate(path string) error {
	route, params, err := Match(path)
	if err != nil {
		return err
	}

	loc := Location{Route: route, Path: Path(route, params), Params: params}

	if route.Protected() && r.authenticated != nil && !r.authenticated() {
		logrus.WithFields(logrus.Fields{
			"path": loc.Path,
		}).Debugln("Route requires login, redirecting")
		loc = Location{Route: Login, Path: string(Login), Params: map[string]string{}}
	}

	r.mu.Lock()
	r.history = append(r.history, loc)
	r.mu.Unlock()

	r.bus.Publish(notify.Event{Origin: notify.OriginLocal, Key: loc.Path})
	return nil
}

// Back returns to the previous location. At the start of history it stays put.
func (r *Router) Back() Location {
	r.mu.Lock()
	if len(r.history) > 1 {
		r.history = r.history[:len(r.history)-1]
	}
	loc := r.current()
	r.mu.Unlock()

	r.bus.Publish(notify.Event{Origin: notify.OriginLocal, Key: loc.Path})
	return loc
}

func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current()
}

func (r *Router) current() Location {
	loc := r.history[len(r.history)-1]
	loc.Params = maps.Clone(loc.Params)
	return loc
}

// Subscribe is notified after every navigation; the event key is the new path.
func (r *Router) Subscribe(fn notify.Listener) notify.Subscription {
	return r.bus.Subscribe(fn)
}
