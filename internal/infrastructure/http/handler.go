package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/memory"
)

// Handler serves the in-memory catalog with the json-server routes the
// inventory client consumes.
type Handler struct {
	catalog *memory.Catalog
}

func NewHandler(catalog *memory.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Register mounts the inventory routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /stock/{id}", h.handleStock)
	mux.HandleFunc("GET /products/{id}", h.handleProduct)
	mux.HandleFunc("GET /products", h.handleProducts)
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stock, err := h.catalog.Stock(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

func (h *Handler) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Products(r.Context()))
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
