package api

import (
	"encoding/json"
	"net/http"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/nearest"
	"github.com/sells-group/trackcore/internal/simplify"
	"github.com/sells-group/trackcore/internal/smooth"
	"github.com/sells-group/trackcore/internal/srtm"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 8 << 20

type handlers struct {
	deps Deps
}

type distanceRequest struct {
	From      *geodesy.GeoPoint `json:"from"`
	To        *geodesy.GeoPoint `json:"to"`
	Algorithm string            `json:"algorithm,omitempty"`
}

type distanceResponse struct {
	Algorithm  string  `json:"algorithm"`
	Distance   float64 `json:"distance"`
	Horizontal float64 `json:"horizontal"`
	Bearing    float64 `json:"bearing"`
}

type simplifyRequest struct {
	Points    geodesy.Track `json:"points"`
	Algorithm string        `json:"algorithm,omitempty"`
	Epsilon   *float64      `json:"epsilon,omitempty"`
}

type simplifyResponse struct {
	Algorithm string  `json:"algorithm"`
	Epsilon   float64 `json:"epsilon"`
	Keep      []bool  `json:"keep"`
	Kept      int     `json:"kept"`
	Total     int     `json:"total"`
}

type smoothRequest struct {
	Values    []float64 `json:"values"`
	Algorithm string    `json:"algorithm,omitempty"`
	Forecast  *int      `json:"forecast,omitempty"`
}

type smoothResponse struct {
	Algorithm string    `json:"algorithm"`
	Values    []float64 `json:"values"`
	Forecast  []float64 `json:"forecast,omitempty"`
}

type elevationRequest struct {
	Points geodesy.Track `json:"points"`
}

type elevationResponse struct {
	Samples []srtm.Sample `json:"samples"`
}

type nearestRequest struct {
	Points    geodesy.Track     `json:"points"`
	Query     *geodesy.GeoPoint `json:"query"`
	Algorithm string            `json:"algorithm,omitempty"`
}

func (h *handlers) distance(w http.ResponseWriter, r *http.Request) {
	var req distanceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	alg, ok := h.distanceAlgorithm(w, req.Algorithm)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, distanceResponse{
		Algorithm:  alg.String(),
		Distance:   geodesy.Distance(req.From, req.To, alg),
		Horizontal: geodesy.HorizontalDistance(req.From, req.To, alg),
		Bearing:    geodesy.Bearing(req.From, req.To),
	})
}

func (h *handlers) simplify(w http.ResponseWriter, r *http.Request) {
	var req simplifyRequest
	if !decode(w, r, &req) {
		return
	}

	alg, epsilon := simplify.DouglasPeucker, 0.0
	if s := h.deps.Simplifier; s != nil {
		alg, epsilon = s.Algorithm(), s.Epsilon()
	}
	if req.Algorithm != "" {
		parsed, err := simplify.ParseAlgorithm(req.Algorithm)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		alg = parsed
	}
	if req.Epsilon != nil {
		epsilon = *req.Epsilon
	}
	s, err := simplify.NewSimplifier(alg, epsilon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mask := s.Simplify(req.Points)
	if mask == nil {
		mask = simplify.KeepMask{}
	}
	writeJSON(w, http.StatusOK, simplifyResponse{
		Algorithm: s.Algorithm().String(),
		Epsilon:   s.Epsilon(),
		Keep:      mask,
		Kept:      mask.Count(),
		Total:     len(req.Points),
	})
}

func (h *handlers) smooth(w http.ResponseWriter, r *http.Request) {
	var req smoothRequest
	if !decode(w, r, &req) {
		return
	}

	cfg := h.deps.Smooth
	if req.Algorithm != "" {
		alg, err := smooth.ParseAlgorithm(req.Algorithm)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Algorithm = alg
	}
	if req.Forecast != nil {
		cfg.Holt.Forecast = *req.Forecast
	}
	s, err := smooth.New(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := smoothResponse{Algorithm: cfg.Algorithm.String()}
	if holt, ok := s.(*smooth.DoubleExponentialFilter); ok && holt.Params().Forecast > 0 {
		resp.Values, resp.Forecast = holt.WithForecast(req.Values)
	} else {
		resp.Values = s.Smooth(req.Values)
	}
	if resp.Values == nil {
		resp.Values = []float64{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) elevation(w http.ResponseWriter, r *http.Request) {
	if h.deps.Grid == nil {
		writeError(w, http.StatusServiceUnavailable, "elevation data not configured")
		return
	}
	var req elevationRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, elevationResponse{Samples: h.deps.Grid.Elevations(req.Points)})
}

func (h *handlers) nearest(w http.ResponseWriter, r *http.Request) {
	var req nearestRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(req.Points) == 0 {
		writeError(w, http.StatusBadRequest, "points is required")
		return
	}
	alg, ok := h.distanceAlgorithm(w, req.Algorithm)
	if !ok {
		return
	}

	m, _ := nearest.New(req.Points, alg).Nearest(*req.Query)
	writeJSON(w, http.StatusOK, m)
}

func (h *handlers) srtmStats(w http.ResponseWriter, _ *http.Request) {
	if h.deps.Grid == nil {
		writeError(w, http.StatusServiceUnavailable, "elevation data not configured")
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Grid.Cache().Stats())
}

// distanceAlgorithm resolves an optional per-request override, writing a 400
// on failure.
func (h *handlers) distanceAlgorithm(w http.ResponseWriter, name string) (geodesy.Algorithm, bool) {
	if name == "" {
		return h.deps.Distance, true
	}
	alg, err := geodesy.ParseAlgorithm(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return alg, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
