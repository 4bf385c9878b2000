package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gestfood/digital-menu/api/controllers"
	"github.com/gestfood/digital-menu/api/middleware"
	"github.com/gestfood/digital-menu/pkg/config"
	"github.com/gestfood/digital-menu/pkg/logger"
)

// Deps are the stores and services the device API exposes.
type Deps struct {
	Cart     controllers.CartStore
	Checkout controllers.Checkout
	Session  controllers.SessionStore
	Seating  controllers.Seating
	Orders   controllers.OrderReader
	Menu     controllers.ProductReader
	Theme    controllers.ThemeStore

	// Ready lists the dependencies checked by /health/ready.
	Ready map[string]controllers.Pinger
	// Gatherer serves /metrics when non-nil.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg, cfg.Device.ID),
		middleware.RequestID(logg),
		middleware.Device(logg, cfg.Device.ID),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, deps.Checkout))
			r.Delete("/", controllers.CartClear(deps.Cart, deps.Checkout, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, deps.Checkout, deps.Menu, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(deps.Cart, deps.Checkout, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, deps.Checkout, logg))
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionGet(deps.Session, logg))
			r.Post("/login", controllers.SessionLogin(deps.Seating, deps.Session, logg))
			r.Post("/register", controllers.SessionRegister(deps.Seating, deps.Session, logg))
			r.Post("/logout", controllers.SessionLogout(deps.Session, logg))
		})
		r.Get("/desks", controllers.DesksList(deps.Seating, logg))

		r.Route("/checkout", func(r chi.Router) {
			m := deps.Checkout
			r.Get("/", controllers.CheckoutState(m))
			r.Post("/submit", controllers.CheckoutSubmit(m, logg))
			r.Post("/acknowledge", controllers.CheckoutTransition(m.Acknowledge, logg))
			r.Post("/pix", controllers.CheckoutTransition(m.ChoosePix, logg))
			r.Post("/card", controllers.CheckoutTransition(m.ChooseCard, logg))
			r.Post("/cancel", controllers.CheckoutTransition(m.Cancel, logg))
			r.Post("/back", controllers.CheckoutTransition(m.BackToMethodSelection, logg))
			r.Post("/complete", controllers.CheckoutTransition(m.SimulateSuccess, logg))
			r.Post("/fail", controllers.CheckoutFailPayment(m, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, deps.Session, logg))
			r.Get("/{orderId}", controllers.OrdersGet(deps.Orders, deps.Session, logg))
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.MenuList(deps.Menu, logg))
			r.Get("/{productId}", controllers.MenuGet(deps.Menu, logg))
		})

		r.Route("/theme", func(r chi.Router) {
			r.Get("/", controllers.ThemeGet(deps.Theme, logg))
			r.Put("/", controllers.ThemeSet(deps.Theme, logg))
			r.Post("/toggle", controllers.ThemeToggle(deps.Theme, logg))
		})
	})

	return r
}
