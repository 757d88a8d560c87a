package handlers

import (
	"net/http"

	profilesvc "github.com/wybmv/backend/internal/services/profiles"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

// CatalogHandler serves the static room and hobby catalog used by the onboarding form.
type CatalogHandler struct {
	response dto.CatalogResponse
}

func NewCatalogHandler(service *profilesvc.Service) *CatalogHandler {
	resp := dto.CatalogResponse{Buildings: []dto.CatalogBuilding{}, Hobbies: []string{}}
	if service != nil {
		catalog := service.Catalog()
		for _, building := range catalog.Buildings {
			resp.Buildings = append(resp.Buildings, dto.CatalogBuilding{
				Name:  string(building.Name),
				Rooms: building.Rooms,
			})
		}
		resp.Hobbies = catalog.Hobbies
	}
	return &CatalogHandler{response: resp}
}

func (h *CatalogHandler) Handle(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, h.response)
}
