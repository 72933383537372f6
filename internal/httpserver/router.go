package httpserver

import (
	"context"
	"log"

	"storefront/internal/cache"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the handlers call. Interfaces keep the router
// testable without a database.
type Deps struct {
	Carts      cartAPI
	Checkout   checkoutAPI
	Customers  customerAPI
	Products   productAPI
	Categories categoryAPI
	Orders     orderAPI
}

// Options are the request-surface knobs that come from config.
type Options struct {
	FrontendOrigin string
	CookieSecure   bool
}

type cartAPI interface {
	Get(ctx context.Context, identity domain.Identity) (cartsvc.View, error)
	Summary(ctx context.Context, identity domain.Identity) (cache.Summary, error)
	AddItem(ctx context.Context, identity domain.Identity, productID string, quantity int64) (cartsvc.View, error)
	UpdateItemQuantity(ctx context.Context, identity domain.Identity, itemID string, quantity int64) (cartsvc.View, error)
	RemoveItem(ctx context.Context, identity domain.Identity, itemID string) (cartsvc.View, error)
	Clear(ctx context.Context, identity domain.Identity) error
	AttachCustomer(ctx context.Context, anonymousID, customerID string) error
}

type checkoutAPI interface {
	Start(ctx context.Context, identity domain.Identity, req checkoutsvc.StartRequest) (domain.CheckoutSession, error)
	Complete(ctx context.Context, identity domain.Identity, sessionID string, details domain.CustomerDetails) (*domain.Order, error)
}

type customerAPI interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	AccessTTLSeconds() int
}

type productAPI interface {
	List(ctx context.Context, categorySlug string) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Save(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type categoryAPI interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Save(ctx context.Context, c domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type orderAPI interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{opts.FrontendOrigin}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	identity := identityMiddleware(deps.Customers, opts.CookieSecure)

	auth := router.Group("/auth")
	{
		auth.POST("/register", registerHandler(deps.Customers))
		auth.POST("/login", identity, loginHandler(deps.Customers, deps.Carts))
		auth.POST("/logout", logoutHandler(deps.Customers))
	}
	router.GET("/me", identity, requireAuth, meHandler)

	router.GET("/products", listProductsHandler(deps.Products))
	router.GET("/products/:slug", getProductHandler(deps.Products))
	router.GET("/categories", listCategoriesHandler(deps.Categories))
	router.GET("/categories/:slug", getCategoryHandler(deps.Categories))

	cart := router.Group("/cart", identity)
	{
		cart.GET("", getCartHandler(deps.Carts))
		cart.GET("/summary", cartSummaryHandler(deps.Carts))
		cart.POST("/items", addCartItemHandler(deps.Carts))
		cart.PATCH("/items/:id", updateCartItemHandler(deps.Carts))
		cart.DELETE("/items/:id", removeCartItemHandler(deps.Carts))
		cart.DELETE("", clearCartHandler(deps.Carts))
	}

	router.POST("/checkout", identity, startCheckoutHandler(deps.Checkout))
	router.POST("/checkout/complete", identity, completeCheckoutHandler(deps.Checkout))

	router.GET("/orders", identity, requireAuth, listOrdersHandler(deps.Orders))
	router.GET("/orders/:id", identity, requireAuth, getOrderHandler(deps.Orders))

	admin := router.Group("/admin", identity, requireAuth, requireAdmin)
	{
		admin.POST("/products", saveProductHandler(deps.Products))
		admin.PUT("/products/:id", saveProductHandler(deps.Products))
		admin.DELETE("/products/:id", deleteProductHandler(deps.Products))
		admin.POST("/categories", saveCategoryHandler(deps.Categories))
		admin.DELETE("/categories/:id", deleteCategoryHandler(deps.Categories))
		admin.GET("/orders", listAllOrdersHandler(deps.Orders))
		admin.GET("/customers", listCustomersHandler(deps.Customers))
	}

	return router
}
