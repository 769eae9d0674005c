package httptransport

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/catalog"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/sentinel"
)

type Catalog interface {
	FindByID(ctx context.Context, productID id.ProductID) (catalog.Product, error)
	List(ctx context.Context) []catalog.Product
}

type CatalogHandler struct {
	catalog Catalog
}

func NewCatalogHandler(c Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/api/products", h.handleList)
	r.Get("/api/products/{id}", h.handleGet)
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string][]catalog.Product{"items": h.catalog.List(r.Context())})
}

func (h *CatalogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	product, err := h.catalog.FindByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "product not found"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}
