package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers and cross-cutting middleware into one
// http.Handler. RequireAuth guards every /api route except the public auth
// endpoints; RateLimit additionally guards the credential endpoints.
type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Rooms         *RoomHandler
	Bookings      *BookingHandler
	Tasks         *TaskHandler
	Issues        *IssueHandler
	Calendar      *CalendarHandler
	Announcements *AnnouncementHandler
	Polls         *PollHandler
	Analytics     *AnalyticsHandler

	RequireAuth  func(http.Handler) http.Handler
	RequireAdmin func(http.Handler) http.Handler
	RequireSuper func(http.Handler) http.Handler
	RateLimit    func(http.Handler) http.Handler
	Captcha      func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	identity := func(next http.Handler) http.Handler { return next }
	if cfg.RequireAuth == nil {
		cfg.RequireAuth = identity
	}
	if cfg.RequireAdmin == nil {
		cfg.RequireAdmin = identity
	}
	if cfg.RequireSuper == nil {
		cfg.RequireSuper = identity
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = identity
	}
	if cfg.Captcha == nil {
		cfg.Captcha = identity
	}

	public := func(h http.HandlerFunc) http.Handler { return cfg.RateLimit(cfg.Captcha(h)) }
	authed := func(h http.HandlerFunc) http.Handler { return cfg.RequireAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return cfg.RequireAuth(cfg.RequireAdmin(h)) }
	super := func(h http.HandlerFunc) http.Handler { return cfg.RequireAuth(cfg.RequireSuper(h)) }

	if cfg.Auth != nil {
		mux.Handle("/api/auth/send-signup-otp", onlyMethod(http.MethodPost, public(cfg.Auth.SendSignupOTP)))
		mux.Handle("/api/auth/verify-signup-otp", onlyMethod(http.MethodPost, public(cfg.Auth.VerifySignupOTP)))
		mux.Handle("/api/auth/signup", onlyMethod(http.MethodPost, public(cfg.Auth.Signup)))
		mux.Handle("/api/auth/login", onlyMethod(http.MethodPost, public(cfg.Auth.Login)))
		mux.Handle("/api/auth/forgot-password", onlyMethod(http.MethodPost, public(cfg.Auth.ForgotPassword)))
		mux.Handle("/api/auth/forgot-password-link", onlyMethod(http.MethodPost, public(cfg.Auth.ForgotPasswordLink)))
		mux.Handle("/api/auth/reset-password", onlyMethod(http.MethodPost, public(cfg.Auth.ResetPassword)))
		mux.Handle("/api/auth/change-password", onlyMethod(http.MethodPost, authed(cfg.Auth.ChangePassword)))
		mux.Handle("/api/auth/upload-image", onlyMethod(http.MethodPost, authed(cfg.Auth.UploadImage)))
		mux.Handle("/api/auth/profile", onlyMethod(http.MethodGet, authed(cfg.Auth.Profile)))
	}

	if cfg.Users != nil {
		mux.Handle("/api/users", onlyMethod(http.MethodGet, admin(cfg.Users.List)))
		mux.Handle("/api/users/", super(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
			id, found := strings.CutSuffix(rest, "/role")
			if !found || id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Users.UpdateRole(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
		}))
	}

	if cfg.Rooms != nil {
		mux.Handle("/api/rooms", cfg.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.List(w, r)
			case http.MethodPost:
				cfg.RequireAdmin(http.HandlerFunc(cfg.Rooms.Create)).ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/rooms/", admin(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Rooms.Update(w, r)
			case http.MethodDelete:
				cfg.Rooms.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Bookings != nil {
		mux.Handle("/api/bookings", authed(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.List(w, r)
			case http.MethodPost:
				cfg.Bookings.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/api/bookings/", authed(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/bookings/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Bookings.Cancel(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
		}))
	}

	if cfg.Tasks != nil {
		mux.Handle("/api/tasks", onlyMethod(http.MethodGet, admin(cfg.Tasks.ListAll)))
		mux.Handle("/api/tasks/mytasks", onlyMethod(http.MethodGet, authed(cfg.Tasks.ListMine)))
		mux.Handle("/api/tasks/assign", onlyMethod(http.MethodPost, admin(cfg.Tasks.Assign)))
		mux.Handle("/api/tasks/status/", authed(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/tasks/status/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPatch {
				methodNotAllowed(w, http.MethodPatch)
				return
			}
			cfg.Tasks.UpdateStatus(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
		}))
		mux.Handle("/api/tasks/cancel/", admin(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/tasks/cancel/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Tasks.Cancel(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
		}))
	}

	if cfg.Issues != nil {
		mux.Handle("/api/issues/raise", onlyMethod(http.MethodPost, authed(cfg.Issues.Raise)))
		mux.Handle("/api/issues/all", onlyMethod(http.MethodGet, authed(cfg.Issues.List)))
		mux.Handle("/api/issues/export/excel", onlyMethod(http.MethodGet, admin(cfg.Issues.ExportExcel)))
		mux.Handle("/api/issues/export/pdf", onlyMethod(http.MethodGet, admin(cfg.Issues.ExportPDF)))
		mux.Handle("/api/issues/", cfg.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/issues/")
			switch {
			case strings.HasSuffix(rest, "/status"):
				id := strings.TrimSuffix(rest, "/status")
				if id == "" {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				r = r.WithContext(ContextWithResourceID(r.Context(), id))
				cfg.RequireAdmin(http.HandlerFunc(cfg.Issues.UpdateStatus)).ServeHTTP(w, r)
			case strings.HasSuffix(rest, "/comment"):
				id := strings.TrimSuffix(rest, "/comment")
				if id == "" {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Issues.AddComment(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
			case rest != "" && !strings.Contains(rest, "/"):
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				r = r.WithContext(ContextWithResourceID(r.Context(), rest))
				cfg.RequireAdmin(http.HandlerFunc(cfg.Issues.Delete)).ServeHTTP(w, r)
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.Calendar != nil {
		mux.Handle("/api/calendar", cfg.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Calendar.List(w, r)
			case http.MethodPost:
				cfg.RequireAdmin(http.HandlerFunc(cfg.Calendar.Create)).ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/calendar/", admin(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/calendar/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Calendar.Update(w, r)
			case http.MethodDelete:
				cfg.Calendar.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Announcements != nil {
		mux.Handle("/api/announcements", cfg.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Announcements.List(w, r)
			case http.MethodPost:
				cfg.RequireAdmin(http.HandlerFunc(cfg.Announcements.Post)).ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/announcements/", admin(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/announcements/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Announcements.Delete(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
		}))
	}

	if cfg.Polls != nil {
		mux.Handle("/api/polls", cfg.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Polls.List(w, r)
			case http.MethodPost:
				cfg.RequireAdmin(http.HandlerFunc(cfg.Polls.Create)).ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/polls/", authed(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/polls/")
			if id, ok := strings.CutSuffix(rest, "/vote"); ok && id != "" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Polls.Vote(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
				return
			}
			if rest == "" || strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Polls.Delete(w, r.WithContext(ContextWithResourceID(r.Context(), rest)))
		}))
	}

	if cfg.Analytics != nil {
		mux.Handle("/api/analytics/employee", onlyMethod(http.MethodGet, authed(cfg.Analytics.Employee)))
		mux.Handle("/api/analytics/admin", onlyMethod(http.MethodGet, admin(cfg.Analytics.Org)))
		mux.Handle("/api/analytics/superadmin", onlyMethod(http.MethodGet, super(cfg.Analytics.Org)))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func onlyMethod(method string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w, method)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
