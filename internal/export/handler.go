package export

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/planemotion/planemotion/backend-go/internal/scene"
)

const maxDocumentSize = 5 << 20 // 5MB

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ExportSVG accepts a scene document as the request body and responds with
// a rendered SVG download. The document is validated by the scene decoder;
// unknown shapes and bad connection indices are dropped, not rejected.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}

	s, err := scene.Unmarshal(data)
	if err != nil {
		http.Error(w, "invalid scene document", http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "diagram"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	svg := RenderSVG(s)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.svg"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(svg)))
	w.Write(svg)

	slog.Info("svg export", "shapes", len(s.Shapes()), "connections", len(s.Connections()), "size", len(svg))
}
