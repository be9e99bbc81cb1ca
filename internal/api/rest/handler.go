package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carbonix/carbonix-indexer/internal/api/rest/dto"
	"github.com/carbonix/carbonix-indexer/internal/domain"
	"github.com/carbonix/carbonix-indexer/internal/project"
	"github.com/carbonix/carbonix-indexer/internal/store"
)

// Refresher triggers a refresh cycle for a contract address
type Refresher interface {
	Refresh(ctx context.Context, address string, force bool) (*domain.ProjectSnapshot, error)
}

// Handler defines the interface for REST API handlers
type Handler interface {
	// ListProjects lists every tracked project with its latest snapshot summary
	// GET /api/v1/projects
	ListProjects(c *gin.Context)

	// GetProject retrieves the latest full snapshot of a project
	// GET /api/v1/projects/:address
	GetProject(c *gin.Context)

	// GetWhitelist retrieves the whitelist table of a project
	// GET /api/v1/projects/:address/whitelist
	GetWhitelist(c *gin.Context)

	// GetMints retrieves the ordered mint ledger of a project
	// GET /api/v1/projects/:address/mints
	GetMints(c *gin.Context)

	// GetDistribution retrieves distribution metrics of a project
	// GET /api/v1/projects/:address/distribution
	GetDistribution(c *gin.Context)

	// GetSale retrieves sale timing metrics of a project
	// GET /api/v1/projects/:address/sale
	GetSale(c *gin.Context)

	// TriggerRefresh runs a refresh cycle for a project (requires authentication)
	// POST /api/v1/projects/:address/refresh?force=true
	TriggerRefresh(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store     store.Store
	refresher Refresher
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, refresher Refresher) Handler {
	return &handler{
		store:     st,
		refresher: refresher,
	}
}

// contractAddress validates and returns the :address path parameter
func contractAddress(c *gin.Context) (string, bool) {
	address := c.Param("address")
	if address == "" {
		respondBadRequest(c, "Contract address is required")
		return "", false
	}
	if !strings.HasPrefix(address, "juno1") {
		respondBadRequest(c, "Invalid contract address", "expected a juno1 bech32 address")
		return "", false
	}
	return address, true
}

// snapshot loads the latest snapshot of an address, translating the not-found
// case to a 404. A project with no stored snapshot is reported as missing,
// never as a zeroed sale model.
func (h *handler) snapshot(c *gin.Context, address string) (*domain.ProjectSnapshot, bool) {
	snapshot, err := h.store.LatestSnapshot(c.Request.Context(), address)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		respondNotFound(c, "No snapshot for project", address)
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "Failed to load snapshot")
		return nil, false
	}
	return snapshot, true
}

// ListProjects lists every tracked project with its latest snapshot summary
func (h *handler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()

	addresses, err := h.store.ListAddresses(ctx)
	if err != nil {
		respondInternalError(c, err, "Failed to list projects")
		return
	}

	response := dto.ProjectListResponse{Projects: make([]dto.ProjectSummary, 0, len(addresses))}
	for _, address := range addresses {
		snapshot, err := h.store.LatestSnapshot(ctx, address)
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			respondInternalError(c, err, "Failed to load snapshot")
			return
		}
		response.Projects = append(response.Projects, dto.NewProjectSummary(snapshot))
	}

	c.JSON(http.StatusOK, response)
}

// GetProject retrieves the latest full snapshot of a project
func (h *handler) GetProject(c *gin.Context) {
	address, ok := contractAddress(c)
	if !ok {
		return
	}

	snapshot, ok := h.snapshot(c, address)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetWhitelist retrieves the whitelist table of a project
func (h *handler) GetWhitelist(c *gin.Context) {
	address, ok := contractAddress(c)
	if !ok {
		return
	}

	snapshot, ok := h.snapshot(c, address)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.WhitelistResponse{
		Address:   address,
		Whitelist: snapshot.Whitelist,
		Supply:    snapshot.WhitelistSupply,
	})
}

// GetMints retrieves the ordered mint ledger of a project
func (h *handler) GetMints(c *gin.Context) {
	address, ok := contractAddress(c)
	if !ok {
		return
	}

	snapshot, ok := h.snapshot(c, address)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.MintsResponse{
		Address: address,
		Mints:   snapshot.Mints,
	})
}

// GetDistribution retrieves distribution metrics of a project
func (h *handler) GetDistribution(c *gin.Context) {
	address, ok := contractAddress(c)
	if !ok {
		return
	}

	snapshot, ok := h.snapshot(c, address)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.DistributionResponse{
		Address:             address,
		DistributionMetrics: project.Distribution(snapshot),
	})
}

// GetSale retrieves sale timing metrics of a project
func (h *handler) GetSale(c *gin.Context) {
	address, ok := contractAddress(c)
	if !ok {
		return
	}

	snapshot, ok := h.snapshot(c, address)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.SaleResponse{
		Address:          address,
		SaleMetrics:      project.Sale(snapshot),
		PresaleHeight:    snapshot.PresaleHeight,
		PresaleTimestamp: snapshot.PresaleTimestamp,
		SaleHeight:       snapshot.SaleHeight,
		SaleTimestamp:    snapshot.SaleTimestamp,
		Cumulative:       project.CumulativeMints(snapshot),
	})
}

// TriggerRefresh runs a refresh cycle for a project
func (h *handler) TriggerRefresh(c *gin.Context) {
	address, ok := contractAddress(c)
	if !ok {
		return
	}

	force := c.Query("force") == "true"

	snapshot, err := h.refresher.Refresh(c.Request.Context(), address, force)
	if err != nil {
		// a failed cycle leaves the derived state explicitly unavailable
		respondUnavailable(c, err, "Refresh cycle failed")
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Address:   snapshot.Address,
		RefreshID: snapshot.RefreshID,
		TxCount:   snapshot.TxCount,
		Excluded:  snapshot.ExcludedCount,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
