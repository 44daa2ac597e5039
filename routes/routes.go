package routes

import (
	"net/http"

	"storefront/controllers"
	"storefront/realtime"
	"storefront/views"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, productController *controllers.ProductController, cartController *controllers.CartController, viewController *views.ViewController, socket *realtime.Handler) {
	// Product routes
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", productController.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", productController.CreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/addProduct", productController.AddProductToCart).Methods(http.MethodPost)
	api.HandleFunc("/products/{pid}", productController.GetProductByID).Methods(http.MethodGet)
	api.HandleFunc("/products/{pid}", productController.UpdateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{pid}", productController.DeleteProduct).Methods(http.MethodDelete)

	// Cart routes
	api.HandleFunc("/carts", cartController.GetCarts).Methods(http.MethodGet)
	api.HandleFunc("/carts", cartController.CreateCart).Methods(http.MethodPost)
	api.HandleFunc("/carts/{cid}", cartController.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/carts/{cid}", cartController.ReplaceCart).Methods(http.MethodPut)
	api.HandleFunc("/carts/{cid}", cartController.EmptyCart).Methods(http.MethodDelete)
	api.HandleFunc("/carts/{cid}/product/{pid}", cartController.AddToCart).Methods(http.MethodPost)
	api.HandleFunc("/carts/{cid}/product/{pid}", cartController.UpdateQuantity).Methods(http.MethodPut)
	api.HandleFunc("/carts/{cid}/product/{pid}", cartController.RemoveFromCart).Methods(http.MethodDelete)

	// View routes
	router.HandleFunc("/", viewController.Home).Methods(http.MethodGet)
	router.HandleFunc("/products", viewController.Products).Methods(http.MethodGet)
	router.HandleFunc("/products/add", viewController.AddProduct).Methods(http.MethodGet)
	router.HandleFunc("/products/{pid}", viewController.ProductDetails).Methods(http.MethodGet)
	router.HandleFunc("/realtimeproducts", viewController.RealtimeProducts).Methods(http.MethodGet)
	router.HandleFunc("/carts", viewController.Carts).Methods(http.MethodGet)
	router.HandleFunc("/carts/{cid}", viewController.CartDetails).Methods(http.MethodGet)
	router.HandleFunc("/favicon.ico", views.Favicon)
	router.PathPrefix("/static/").Handler(views.Static()).Methods(http.MethodGet)

	// Realtime
	router.Handle("/ws", socket)

	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
}
