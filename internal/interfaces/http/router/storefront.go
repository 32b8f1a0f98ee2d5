package router

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers of the storefront and admin API. A nil
// handler leaves its routes unmounted.
type Handlers struct {
	System       *handler.SystemHandler
	Account      *handler.AccountHandler
	Catalog      *handler.CatalogHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Content      *handler.ContentHandler
	Directory    *handler.DirectoryHandler
	Localization *handler.LocalizationHandler

	CatalogAdmin  *handler.CatalogAdminHandler
	ContentAdmin  *handler.ContentAdminHandler
	DiscountAdmin *handler.DiscountAdminHandler
	OrderAdmin    *handler.OrderAdminHandler
	StoreAdmin    *handler.StoreAdminHandler
	SystemAdmin   *handler.SystemAdminHandler
}

// Guards are extra middleware for sensitive route groups
type Guards struct {
	// Credentials throttles register, login and refresh; nil disables it
	Credentials gin.HandlerFunc
}

// Routes returns the public, account and admin route groups. The API group
// is expected to run JWTAuth in optional mode and StoreContext already.
func Routes(h Handlers, g Guards) []RouteRegistrar {
	var out []RouteRegistrar
	add := func(groups ...*DomainGroup) {
		for _, dg := range groups {
			if dg != nil {
				out = append(out, dg)
			}
		}
	}
	add(systemRoutes(h.System))
	add(authRoutes(h.Account, g), accountRoutes(h.Account, h.Checkout))
	add(catalogRoutes(h.Catalog))
	add(cartRoutes(h.Cart), checkoutRoutes(h.Checkout))
	add(contentRoutes(h.Content))
	add(directoryRoutes(h.Directory, h.Localization))
	add(adminRoutes(h))
	return out
}

func systemRoutes(sys *handler.SystemHandler) *DomainGroup {
	if sys == nil {
		return nil
	}
	g := NewDomainGroup("system", "")
	g.GET("/health", sys.Health)
	g.GET("/system/info", sys.GetSystemInfo)
	g.GET("/system/ping", sys.Ping)
	return g
}

func authRoutes(account *handler.AccountHandler, guards Guards) *DomainGroup {
	if account == nil {
		return nil
	}
	g := NewDomainGroup("auth", "/auth")
	if guards.Credentials != nil {
		g.Use(guards.Credentials)
	}
	g.POST("/register", account.Register)
	g.POST("/login", account.Login)
	g.POST("/refresh", account.RefreshToken)
	g.POST("/logout", account.Logout)
	return g
}

func accountRoutes(account *handler.AccountHandler, checkout *handler.CheckoutHandler) *DomainGroup {
	if account == nil && checkout == nil {
		return nil
	}
	// Me answers 404 for guests itself, so it stays outside RequireAuth
	g := NewDomainGroup("account", "/account")
	if account != nil {
		g.GET("/me", account.Me)
	}
	secured := g.Group("account-secured", "")
	secured.Use(middleware.RequireAuth())
	if account != nil {
		secured.PUT("/password", account.ChangePassword)
		secured.PUT("/addresses", account.UpdateAddresses)
	}
	if checkout != nil {
		secured.GET("/orders", checkout.MyOrders)
		secured.GET("/orders/:id", checkout.MyOrder)
		secured.GET("/orders/:id/invoice", checkout.Invoice)
		secured.POST("/orders/:id/reorder", checkout.ReOrder)
	}
	return g
}

func catalogRoutes(catalog *handler.CatalogHandler) *DomainGroup {
	if catalog == nil {
		return nil
	}
	g := NewDomainGroup("catalog", "")
	g.GET("/categories", catalog.CategoryTree)
	g.GET("/categories/:id", catalog.GetCategory)
	g.GET("/categories/:id/breadcrumb", catalog.CategoryBreadcrumb)
	g.GET("/manufacturers", catalog.ListManufacturers)
	g.GET("/manufacturers/:id", catalog.GetManufacturer)
	g.GET("/products", catalog.SearchProducts)
	g.GET("/products/:id", catalog.GetProduct)
	g.GET("/home/categories", catalog.HomePageCategories)
	g.GET("/home/products", catalog.HomePageProducts)
	return g
}

func cartRoutes(cart *handler.CartHandler) *DomainGroup {
	if cart == nil {
		return nil
	}
	g := NewDomainGroup("cart", "")
	g.GET("/cart", cart.GetCart)
	g.DELETE("/cart", cart.Clear)
	g.POST("/cart/items", cart.AddToCart)
	g.PUT("/cart/items/:id", cart.UpdateItem)
	g.DELETE("/cart/items/:id", cart.RemoveItem)
	g.GET("/wishlist", cart.GetWishlist)
	g.POST("/wishlist/items", cart.AddToWishlist)
	g.POST("/wishlist/move-to-cart", cart.MoveWishlistToCart)
	return g
}

func checkoutRoutes(checkout *handler.CheckoutHandler) *DomainGroup {
	if checkout == nil {
		return nil
	}
	g := NewDomainGroup("checkout", "/checkout")
	g.POST("/totals", checkout.Totals)
	g.POST("/shipping-options", checkout.ShippingOptions)
	g.POST("/orders", checkout.PlaceOrder)
	return g
}

func contentRoutes(content *handler.ContentHandler) *DomainGroup {
	if content == nil {
		return nil
	}
	g := NewDomainGroup("content", "")
	g.GET("/polls", content.ListPolls)
	g.GET("/polls/:id", content.GetPoll)
	g.POST("/polls/:id/vote", content.Vote)
	g.GET("/news", content.ListNews)
	g.GET("/news/:id", content.GetNews)
	g.POST("/news/:id/comments", content.CommentNews)
	g.GET("/home/news", content.HomePageNews)
	g.GET("/blog", content.ListBlogPosts)
	g.GET("/blog/tags", content.BlogTags)
	g.GET("/blog/posts/:id", content.GetBlogPost)
	g.POST("/blog/posts/:id/comments", content.CommentBlogPost)
	g.POST("/newsletter/subscribe", content.Subscribe)
	g.POST("/newsletter/unsubscribe", content.Unsubscribe)
	g.PUT("/newsletter/subscriptions/:guid", content.ActivateSubscription)
	return g
}

func directoryRoutes(directory *handler.DirectoryHandler, loc *handler.LocalizationHandler) *DomainGroup {
	if directory == nil && loc == nil {
		return nil
	}
	g := NewDomainGroup("directory", "")
	if directory != nil {
		g.GET("/countries", directory.ListCountries)
		g.GET("/countries/:id/states", directory.ListStates)
		g.GET("/currencies", directory.ListCurrencies)
	}
	if loc != nil {
		g.GET("/languages", loc.ListLanguages)
		g.GET("/languages/:id/resources", loc.Resources)
	}
	return g
}

func adminRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("admin", "/admin")
	g.Use(middleware.RequireRole(middleware.AdministratorsRole))
	mounted := false

	if c := h.CatalogAdmin; c != nil {
		mounted = true
		g.GET("/categories", c.ListCategories)
		g.POST("/categories", c.CreateCategory)
		g.PUT("/categories/:id", c.UpdateCategory)
		g.DELETE("/categories/:id", c.DeleteCategory)
		g.GET("/manufacturers", c.ListManufacturers)
		g.POST("/manufacturers", c.CreateManufacturer)
		g.PUT("/manufacturers/:id", c.UpdateManufacturer)
		g.DELETE("/manufacturers/:id", c.DeleteManufacturer)
		g.GET("/products", c.SearchProducts)
		g.POST("/products", c.CreateProduct)
		g.GET("/products/:id", c.GetProduct)
		g.PUT("/products/:id", c.UpdateProduct)
		g.DELETE("/products/:id", c.DeleteProduct)
		g.POST("/products/:id/inventory", c.AdjustInventory)
		g.GET("/products/:id/categories", c.ProductCategories)
		g.POST("/products/:id/categories", c.AddProductCategory)
		g.DELETE("/products/:id/categories/:mappingId", c.RemoveProductCategory)
		g.GET("/products/:id/manufacturers", c.ProductManufacturers)
		g.POST("/products/:id/manufacturers", c.AddProductManufacturer)
		g.DELETE("/products/:id/manufacturers/:mappingId", c.RemoveProductManufacturer)
		g.GET("/products/:id/pictures", c.ProductPictures)
		g.POST("/products/:id/pictures", c.UploadProductPicture)
		g.DELETE("/products/:id/pictures/:mappingId", c.RemoveProductPicture)
		g.PUT("/pictures/:id", c.UpdatePicture)
		g.DELETE("/pictures/:id", c.DeletePicture)
		g.GET("/export/products", c.ExportProducts)
		g.POST("/import/products", c.ImportProducts)
	}

	if c := h.ContentAdmin; c != nil {
		mounted = true
		g.GET("/polls", c.ListPolls)
		g.POST("/polls", c.CreatePoll)
		g.GET("/polls/:id", c.GetPoll)
		g.PUT("/polls/:id", c.UpdatePoll)
		g.DELETE("/polls/:id", c.DeletePoll)
		g.GET("/news", c.ListNews)
		g.POST("/news", c.CreateNews)
		g.GET("/news/:id", c.GetNews)
		g.PUT("/news/:id", c.UpdateNews)
		g.DELETE("/news/:id", c.DeleteNews)
		g.GET("/blog", c.ListBlogPosts)
		g.POST("/blog", c.CreateBlogPost)
		g.GET("/blog/:id", c.GetBlogPost)
		g.PUT("/blog/:id", c.UpdateBlogPost)
		g.DELETE("/blog/:id", c.DeleteBlogPost)
		g.GET("/newsletter/subscriptions", c.ListSubscriptions)
	}

	if d := h.Directory; d != nil {
		mounted = true
		g.GET("/currencies", d.AdminListCurrencies)
		g.POST("/currencies/update-rates", d.UpdateExchangeRates)
		g.PUT("/currencies/:code", d.SaveCurrency)
		g.DELETE("/currencies/:id", d.DeleteCurrency)
	}

	if d := h.DiscountAdmin; d != nil {
		mounted = true
		g.GET("/discounts", d.List)
		g.POST("/discounts", d.Create)
		g.GET("/discounts/:id", d.Get)
		g.PUT("/discounts/:id", d.Update)
		g.DELETE("/discounts/:id", d.Delete)
	}

	if l := h.Localization; l != nil {
		mounted = true
		g.GET("/languages", l.AdminListLanguages)
		g.POST("/languages", l.CreateLanguage)
		g.PUT("/languages/:id", l.UpdateLanguage)
		g.DELETE("/languages/:id", l.DeleteLanguage)
		g.PUT("/languages/:id/resources", l.SetResource)
		g.GET("/languages/:id/resources/export", l.ExportResources)
		g.POST("/languages/:id/resources/import", l.ImportResources)
		g.DELETE("/resources/:id", l.DeleteResource)
		g.GET("/localized/:entityId", l.LocalizedValues)
		g.PUT("/localized/:entityId", l.SaveLocalizedValue)
	}

	if o := h.OrderAdmin; o != nil {
		mounted = true
		g.GET("/orders", o.List)
		g.GET("/orders/:id", o.Get)
		g.DELETE("/orders/:id", o.Delete)
		g.GET("/orders/:id/invoice", o.Invoice)
		g.POST("/orders/:id/actions/:action", o.Action)
		g.POST("/orders/:id/partial-refund", o.PartialRefund)
		g.POST("/orders/:id/notes", o.AddNote)
	}

	if s := h.StoreAdmin; s != nil {
		mounted = true
		g.GET("/stores", s.ListStores)
		g.POST("/stores", s.CreateStore)
		g.GET("/stores/:id", s.GetStore)
		g.PUT("/stores/:id", s.UpdateStore)
		g.DELETE("/stores/:id", s.DeleteStore)
		g.GET("/customers", s.ListCustomers)
		g.GET("/customers/:id", s.GetCustomer)
		g.DELETE("/customers/:id", s.DeleteCustomer)
		g.GET("/customer-roles", s.ListCustomerRoles)
	}

	if s := h.SystemAdmin; s != nil {
		mounted = true
		g.GET("/settings", s.ListSettings)
		g.PUT("/settings", s.SetSetting)
		g.GET("/settings/:name", s.GetSetting)
		g.DELETE("/settings/:id", s.DeleteSetting)
		g.GET("/plugins", s.ListPlugins)
		g.POST("/plugins/:systemName/install", s.InstallPlugin)
		g.POST("/plugins/:systemName/uninstall", s.UninstallPlugin)
		g.DELETE("/cache", s.ClearCache)
		g.GET("/tasks", s.ListTasks)
		g.PUT("/tasks/:type", s.UpdateTask)
		g.POST("/tasks/:type/run", s.RunTask)
	}

	if !mounted {
		return nil
	}
	return g
}
