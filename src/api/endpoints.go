package api

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/rng"
)

var errUnhealthy = errors.New("entropy source unhealthy")

type Handlers struct {
	r       io.Reader
	health  *rng.Health
	log     *zap.SugaredLogger
	maxPage int
}

func NewHandlers(r io.Reader, h *rng.Health, log *zap.SugaredLogger, maxPage int) *Handlers {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handlers{r: r, health: h, log: log, maxPage: maxPage}
}

// seedFor returns the caller's seed, or draws a fresh one from the entropy
// source. Only the fresh path depends on the source being healthy.
func (h *Handlers) seedFor(given *uint64) (uint64, error) {
	if given != nil {
		return *given, nil
	}
	if h.health == nil {
		return 0, errors.Mark(errors.New("RNG unhealthy: missing health monitor"), errUnhealthy)
	}
	if ok, msg, _ := h.health.Snapshot(); !ok {
		return 0, errors.Mark(errors.Newf("RNG unhealthy: %s", msg), errUnhealthy)
	}
	seed, err := rng.NewSeed(h.r, h.health)
	if err != nil {
		return 0, errors.Mark(err, errUnhealthy)
	}
	return seed, nil
}

func (h *Handlers) requestID() (string, error) {
	id, err := rng.NewRequestID(h.r)
	if err != nil && h.health != nil {
		h.health.Set(false, "error fetching random bytes for request id: "+err.Error())
	}
	return id, err
}

/*
handle enforces:
1. Outcome computation (no request id yet)
2. Error classification
3. Request id drawn ONLY after success
4. JSON vs plaintext response
*/
func (h *Handlers) handle(c *gin.Context, work func() (text string, payload gin.H, err error)) {
	text, payload, err := work()
	if err != nil {
		h.fail(c, err)
		return
	}

	requestID, err := h.requestID()
	if err != nil {
		h.log.Errorw("request id generation failed", "error", err)
		responder{c}.err(http.StatusInternalServerError, "Error generating request id.")
		return
	}

	responder{c}.ok(text, payload, requestID)
}

// fail maps engine errors onto HTTP statuses. Caller input errors carry
// their reason back; anything else is logged and hidden.
func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case dist.IsCallerError(err):
		responder{c}.err(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errUnhealthy):
		responder{c}.err(http.StatusServiceUnavailable, err.Error())
	default:
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		responder{c}.err(http.StatusInternalServerError, "Internal error.")
	}
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	responder{c}.err(http.StatusBadRequest, "Invalid request body: "+err.Error())
}

func CheckHeader(headerName, expectedValue string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Auth disabled if not configured
		if expectedValue == "" {
			c.Next()
			return
		}

		if c.GetHeader(headerName) != expectedValue {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
