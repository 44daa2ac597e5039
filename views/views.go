package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"storefront/controllers"
	"storefront/models"
	"storefront/services"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultLimit is the page size of the products page.
const DefaultLimit = 5

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = []string{
	"home",
	"products",
	"productDetails",
	"addProduct",
	"realtimeproducts",
	"carts",
	"cartDetails",
	"error",
}

// Catalog is the product service the pages read from.
type Catalog interface {
	List(ctx context.Context, opts services.ListOptions) (models.ProductPage, error)
	All(ctx context.Context, sortBy string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
}

// Carts is the cart service the pages read from.
type Carts interface {
	GetByID(ctx context.Context, id string) (models.CartDetails, error)
	ListAll(ctx context.Context) ([]models.CartDetails, error)
}

// ViewController renders the HTML pages
type ViewController struct {
	catalog   Catalog
	carts     Carts
	templates map[string]*template.Template
	logger    *zap.Logger
}

type productsPage struct {
	Products    []models.Product
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	CurrentPage int
	TotalPages  int
	Limit       int
	Sort        string
	Query       string
}

type errorPage struct {
	Status  int
	Message string
}

var funcs = template.FuncMap{
	"subtotal": func(price float64, quantity int) float64 {
		return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
	},
}

// NewViewController parses the embedded templates.
func NewViewController(catalog Catalog, carts Carts, logger *zap.Logger) (*ViewController, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &ViewController{
		catalog:   catalog,
		carts:     carts,
		templates: templates,
		logger:    logger.Named("views"),
	}, nil
}

// Static serves the embedded assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Favicon answers with no content.
func Favicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (vc *ViewController) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := vc.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		vc.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (vc *ViewController) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := controllers.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		vc.logger.Error("page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	vc.render(w, status, "error", errorPage{Status: status, Message: controllers.PublicMessage(err)})
}

// Home renders the landing page
func (vc *ViewController) Home(w http.ResponseWriter, r *http.Request) {
	vc.render(w, http.StatusOK, "home", nil)
}

// Products renders one page of the catalog
func (vc *ViewController) Products(w http.ResponseWriter, r *http.Request) {
	opts, err := controllers.ListOptionsFromQuery(r.URL.Query(), DefaultLimit, services.SortAsc)
	if err != nil {
		vc.render(w, http.StatusBadRequest, "error", errorPage{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	if opts.Sort != services.SortAsc && opts.Sort != services.SortDesc {
		opts.Sort = services.SortAsc
	}

	page, err := vc.catalog.List(r.Context(), opts)
	if err != nil {
		vc.renderError(w, r, err)
		return
	}

	data := productsPage{
		Products:    page.Docs,
		HasPrevPage: page.HasPrevPage,
		HasNextPage: page.HasNextPage,
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages,
		Limit:       page.Limit,
		Sort:        opts.Sort,
		Query:       opts.Query,
	}
	if page.PrevPage != nil {
		data.PrevPage = *page.PrevPage
	}
	if page.NextPage != nil {
		data.NextPage = *page.NextPage
	}
	vc.render(w, http.StatusOK, "products", data)
}

// ProductDetails renders a single product
func (vc *ViewController) ProductDetails(w http.ResponseWriter, r *http.Request) {
	product, err := vc.catalog.GetByID(r.Context(), mux.Vars(r)["pid"])
	if err != nil {
		vc.renderError(w, r, err)
		return
	}
	vc.render(w, http.StatusOK, "productDetails", product)
}

// AddProduct renders the product creation form
func (vc *ViewController) AddProduct(w http.ResponseWriter, r *http.Request) {
	vc.render(w, http.StatusOK, "addProduct", nil)
}

// RealtimeProducts renders the whole catalog sorted by price; the page then
// re-sorts it over the websocket.
func (vc *ViewController) RealtimeProducts(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy != services.SortDesc {
		sortBy = services.SortAsc
	}

	products, err := vc.catalog.All(r.Context(), sortBy)
	if err != nil {
		vc.renderError(w, r, err)
		return
	}
	vc.render(w, http.StatusOK, "realtimeproducts", products)
}

// Carts renders every cart with its totals
func (vc *ViewController) Carts(w http.ResponseWriter, r *http.Request) {
	carts, err := vc.carts.ListAll(r.Context())
	if err != nil {
		vc.renderError(w, r, err)
		return
	}
	vc.render(w, http.StatusOK, "carts", carts)
}

// CartDetails renders a single cart
func (vc *ViewController) CartDetails(w http.ResponseWriter, r *http.Request) {
	cart, err := vc.carts.GetByID(r.Context(), mux.Vars(r)["cid"])
	if err != nil {
		vc.renderError(w, r, err)
		return
	}
	vc.render(w, http.StatusOK, "cartDetails", cart)
}
