package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/nava-store/internal/catalog"
	"github.com/ariefcatur/nava-store/internal/domain"
)

type CatalogHandler struct {
	Catalog *catalog.Service
}

type productReq struct {
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Description string `json:"description"`
	// Stock diturunkan dari varian; kalau dikirim, request ditolak.
	Stock *int `json:"stock,omitempty"`
}

func (p productReq) fields() (domain.ProductFields, error) {
	if p.Stock != nil {
		return domain.ProductFields{}, domain.Invalidf("stock is derived from variants; edit variant stock instead")
	}
	return domain.ProductFields{Name: p.Name, Category: p.Category, Image: p.Image, Description: p.Description}, nil
}

type variantCreateReq struct {
	Title       string `json:"title" validate:"required"`
	Price       *int64 `json:"price" validate:"required,gte=0"`
	Description string `json:"description"`
}

type variantUpdateReq struct {
	Title       string `json:"title" validate:"required"`
	Price       *int64 `json:"price" validate:"required,gte=0"`
	Stock       *int   `json:"stock" validate:"required,gte=0"`
	Description string `json:"description"`
}

// Register: rute publik.
func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/api/products", h.listProducts)
}

// RegisterAdmin: rute admin, dipasang di group yang sudah lewat auth.
func (h *CatalogHandler) RegisterAdmin(r chi.Router) {
	r.Get("/api/admin/products", h.listProducts)
	r.Post("/api/admin/products", h.createProduct)
	r.Put("/api/admin/product/{id}", h.updateProduct)
	r.Post("/api/admin/product/{id}/variant", h.addVariant)
	r.Put("/api/admin/variant/{id}", h.updateVariant)
	r.Delete("/api/admin/variant/{id}", h.deleteVariant)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.GetCatalog(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	f, err := req.fields()
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := h.Catalog.CreateProduct(r.Context(), f)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req productReq
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	f, err := req.fields()
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.Catalog.UpdateProduct(r.Context(), id, f); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CatalogHandler) addVariant(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req variantCreateReq
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := h.Catalog.AddVariant(r.Context(), productID, req.Title, *req.Price, req.Description)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (h *CatalogHandler) updateVariant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req variantUpdateReq
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	err = h.Catalog.UpdateVariant(r.Context(), id, domain.VariantFields{
		Title:       req.Title,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Description: req.Description,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true, "stockSynced": true})
}

func (h *CatalogHandler) deleteVariant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteVariant(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
