package apiv1

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/versemind/VerseMind/app/repository"
	"github.com/versemind/VerseMind/internal/pkg/cache"
	"github.com/versemind/VerseMind/internal/pkg/database"
	"github.com/versemind/VerseMind/internal/pkg/entitlements"
	"github.com/versemind/VerseMind/internal/pkg/tiers"
	"github.com/versemind/VerseMind/internal/pkg/tokens"
)

// statusCacheTTL bounds how stale a balance snapshot may be. Status reads
// never take the ledger row lock, so a short-lived cache on top costs no
// additional accuracy.
const statusCacheTTL = 30 * time.Second

// APIServer implements the quota HTTP surface
type APIServer struct {
	tokens   *tokens.Service
	resolver *tiers.Resolver
	validate *validator.Validate
}

// NewAPIServer creates a new API server instance wired to the shared DB.
func NewAPIServer() *APIServer {
	db := database.GetDB()
	return &APIServer{
		tokens:   tokens.NewService(db),
		resolver: tiers.NewResolver(tiers.NewRepository(db), tiers.LoadTrialConfig()),
		validate: validator.New(),
	}
}

// RegisterHandlers attaches the public read-only routes to the v1 group.
func RegisterHandlers(v1 fiber.Router, s *APIServer) {
	v1.Get("/ping", s.GetPing)
	v1.Get("/tokens/status", s.GetTokenStatus)
	v1.Get("/tiers/:user_id", s.GetUserTier)
}

// RegisterInternalHandlers attaches the mutation routes. The router guards
// this group with the service key middleware.
func RegisterInternalHandlers(internal fiber.Router, s *APIServer) {
	internal.Post("/tokens/consume", s.PostConsume)
	internal.Post("/tokens/purchase", s.PostPurchase)
	internal.Put("/users/plan", s.PutPlanPreference)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetTokenStatus returns the balance snapshot for an (identifier, plan)
// pair. Lock-free and cached; consumers of this endpoint accept staleness.
func (s *APIServer) GetTokenStatus(c *fiber.Ctx) error {
	identifier := c.Query("identifier")
	plan := c.Query("plan")
	if identifier == "" || plan == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "identifier and plan are required"})
	}

	key := statusCacheKey(identifier, plan)
	if cached, err := cache.Get(key); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	ledger, err := s.tokens.GetOrCreate(identifier, entitlements.NormalizePlan(plan))
	if err != nil {
		log.Errorf("token status lookup failed for %s: %v", identifier, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load token balance"})
	}

	resp := TokenStatusResponse{
		Identifier:         ledger.Identifier,
		Plan:               ledger.Plan,
		AvailableTokens:    ledger.AvailableTokens,
		PurchasedTokens:    ledger.PurchasedTokens,
		DailyLimit:         ledger.DailyLimit,
		TotalConsumedToday: ledger.TotalConsumedToday,
	}
	if raw, err := json.Marshal(resp); err == nil {
		if err := cache.Set(key, string(raw), statusCacheTTL); err != nil {
			log.Debugf("token status cache write failed: %v", err)
		}
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetUserTier resolves the effective plan tier for a user.
func (s *APIServer) GetUserTier(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
	}

	tier := s.resolver.Resolve(uint(userID))
	return c.Status(fiber.StatusOK).JSON(TierResponse{UserID: uint(userID), Tier: string(tier)})
}

// PostConsume resolves the caller's tier and spends tokens for one request.
// Business failures (insufficient tokens) are 200s with success=false so
// the generation service can render a clean upgrade prompt.
func (s *APIServer) PostConsume(c *fiber.Ctx) error {
	var req ConsumeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	tier := s.resolver.Resolve(req.UserID)
	identifier := req.Identifier
	if identifier == "" {
		identifier = fmt.Sprintf("user:%d", req.UserID)
	}

	result, err := s.tokens.Consume(identifier, tier, req.Cost)
	if err != nil {
		log.Errorf("token consumption failed for %s: %v", identifier, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token consumption failed"})
	}

	invalidateStatusCache(identifier, string(tier))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tier":   string(tier),
		"result": result,
	})
}

// PostPurchase credits purchased tokens after a completed payment. Called
// exactly once per purchase by the payment-completion worker.
func (s *APIServer) PostPurchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	result, err := s.tokens.AddPurchased(req.Identifier, entitlements.NormalizePlan(req.Plan), req.Amount)
	if err != nil {
		log.Errorf("token top-up failed for %s: %v", req.Identifier, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token top-up failed"})
	}

	invalidateStatusCache(req.Identifier, req.Plan)

	return c.Status(fiber.StatusOK).JSON(result)
}

// PutPlanPreference stores the user's selected plan preference.
func (s *APIServer) PutPlanPreference(c *fiber.Ctx) error {
	var req PlanPreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	settings, err := repo.GetOrCreateSettings(req.UserID)
	if err != nil {
		log.Errorf("plan preference lookup failed for user %d: %v", req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	settings.Plan = string(entitlements.NormalizePlan(req.Plan))
	if err := repo.SaveSettings(settings); err != nil {
		log.Errorf("plan preference save failed for user %d: %v", req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save plan preference"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user_id": req.UserID, "plan": settings.Plan})
}

func statusCacheKey(identifier, plan string) string {
	return fmt.Sprintf("tokens:status:%s:%s", identifier, plan)
}

func invalidateStatusCache(identifier, plan string) {
	if err := cache.Delete(statusCacheKey(identifier, plan)); err != nil {
		log.Debugf("token status cache invalidation failed: %v", err)
	}
}
