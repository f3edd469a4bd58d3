package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"oakfire-be/internal/addon"
	"oakfire-be/internal/utils"
)

type AddonHandler struct {
	svc addon.Service
}

func NewAddonHandler(svc addon.Service) *AddonHandler {
	return &AddonHandler{svc: svc}
}

type addonDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"isActive"`
	Category    *string   `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toAddonDTO(a *addon.Addon) addonDTO {
	return addonDTO{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Price:       utils.CentsToDollars(a.PriceCents),
		IsActive:    a.IsActive,
		Category:    a.Category,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type createAddonDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Category    *string `json:"category"`
}

type updateAddonDTO struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"isActive"`
	Category    *string  `json:"category"`
}

type addonListDTO struct {
	Items []addonDTO `json:"items"`
	Total int64      `json:"total"`
	Page  int32      `json:"page"`
	Limit int32      `json:"limit"`
}

// GetAddons handles GET /addons?category=&page=&limit=&includeInactive=
func (h *AddonHandler) GetAddons(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := &addon.AddonFilterInput{ActiveOnly: query.Get("includeInactive") != "true"}
	if c := query.Get("category"); c != "" {
		filter.Category = &c
	}

	page := parseInt32(query.Get("page"), 1)
	limit := parseInt32(query.Get("limit"), 50)

	items, total, err := h.svc.List(r.Context(), filter, limit, page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := addonListDTO{Items: make([]addonDTO, 0, len(items)), Total: total, Page: page, Limit: limit}
	for _, a := range items {
		out.Items = append(out.Items, toAddonDTO(a))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetAddon handles GET /addons/{id}.
func (h *AddonHandler) GetAddon(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAddonDTO(a))
}

// PostAddon handles POST /addons (admin).
func (h *AddonHandler) PostAddon(w http.ResponseWriter, r *http.Request) {
	var dto createAddonDTO
	if err := decodeBody(r, &dto); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	a, err := h.svc.Create(r.Context(), addon.CreateAddonInput{
		Name:        dto.Name,
		Description: dto.Description,
		PriceCents:  utils.DollarsToCents(dto.Price),
		Category:    dto.Category,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toAddonDTO(a))
}

// PatchAddon handles PATCH /addons/{id} (admin).
func (h *AddonHandler) PatchAddon(w http.ResponseWriter, r *http.Request) {
	var dto updateAddonDTO
	if err := decodeBody(r, &dto); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	input := addon.UpdateAddonInput{
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    dto.IsActive,
		Category:    dto.Category,
	}
	if dto.Price != nil {
		cents := utils.DollarsToCents(*dto.Price)
		input.PriceCents = &cents
	}

	a, err := h.svc.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toAddonDTO(a))
}

// DeleteAddon handles DELETE /addons/{id} (admin).
func (h *AddonHandler) DeleteAddon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseInt32(s string, fallback int32) int32 {
	if s == "" {
		return fallback
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 1 {
		return fallback
	}
	return int32(n)
}
