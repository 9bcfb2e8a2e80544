package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers and middleware into the API mux. Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	Reservations *ReservationHandler
	Calendar     *CalendarHandler
	Rooms        *RoomHandler
	Auth         *AuthHandler
	// RequireAdmin guards the admin routes. Without it those routes are not
	// registered.
	RequireAdmin func(http.Handler) http.Handler
	// LoginLimiter wraps the login route when set.
	LoginLimiter func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	admin := func(h http.HandlerFunc) http.Handler {
		if cfg.RequireAdmin == nil {
			return nil
		}
		return cfg.RequireAdmin(h)
	}

	if cfg.Rooms != nil {
		mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Rooms.List(w, r)
		})
	}

	if cfg.Calendar != nil {
		mux.HandleFunc("/api/calendar", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Get(w, r)
		})
	}

	if cfg.Reservations != nil {
		update := admin(cfg.Reservations.Update)
		remove := admin(cfg.Reservations.Delete)

		mux.HandleFunc("/api/reservations", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Reservations.List(w, r)
			case http.MethodPost:
				cfg.Reservations.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/reservations/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/reservations/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithReservationID(r.Context(), id)
			r = r.WithContext(ctx)

			allowed := []string{http.MethodGet}
			if update != nil {
				allowed = append(allowed, http.MethodPut, http.MethodDelete)
			}
			switch {
			case r.Method == http.MethodGet:
				cfg.Reservations.Get(w, r)
			case r.Method == http.MethodPut && update != nil:
				update.ServeHTTP(w, r)
			case r.Method == http.MethodDelete && remove != nil:
				remove.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, allowed...)
			}
		})
	}

	if cfg.Auth != nil {
		var login http.Handler = http.HandlerFunc(cfg.Auth.Login)
		if cfg.LoginLimiter != nil {
			login = cfg.LoginLimiter(login)
		}
		mux.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			login.ServeHTTP(w, r)
		})
		mux.HandleFunc("/api/admin/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})
		if session := admin(cfg.Auth.Session); session != nil {
			mux.HandleFunc("/api/admin/session", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				session.ServeHTTP(w, r)
			})
		}
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
