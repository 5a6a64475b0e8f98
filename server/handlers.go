package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/minios-linux/lokitd/failure"
	"github.com/minios-linux/lokitd/merge"
	"github.com/minios-linux/lokitd/translate"
)

// ---------------------------------------------------------------------------
// POST /api/download
// ---------------------------------------------------------------------------

// download merges a translation mapping into a PO catalog. The body is
// multipart: part 0 is the catalog, part 1 the JSON mapping. Part names
// are ignored.
func (s *Server) download(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "Server.download")
	defer span.End()

	s.limitBody(c)
	parts, err := readParts(c.Request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeFailure(c, err)
		return
	}

	res, err := merge.Catalog(ctx, parts[0], parts[1])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeFailure(c, err)
		return
	}

	s.logger.InfoContext(ctx, "catalog merged",
		"entries", res.Entries,
		"updated", res.Updated,
		"translated", res.Translated,
		"fuzzy", res.Fuzzy,
		"untranslated", res.Untranslated,
		"language", res.Language,
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opts.Filename))
	c.Data(http.StatusOK, "text/plain", res.Data)
}

// readParts reads the catalog and translations parts of a multipart body.
func readParts(r *http.Request) ([][]byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, failure.Wrap(failure.InvalidInput, "Invalid request", err).
			WithDetails("expected a multipart/form-data body: %s", err.Error())
	}

	var parts [][]byte
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, bodyError(len(parts), err)
		}
		data, err := io.ReadAll(p)
		p.Close()
		if err != nil {
			return nil, bodyError(len(parts), err)
		}
		parts = append(parts, data)
	}

	if len(parts) != 2 {
		return nil, failure.New(failure.InvalidInput, "Invalid request").
			WithDetails("expected 2 parts (catalog and translations), got %d", len(parts))
	}
	return parts, nil
}

func bodyError(part int, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return failure.Wrap(failure.InvalidInput, "Invalid request", err).
			WithDetails("the request body exceeds %d bytes", tooLarge.Limit)
	}
	return failure.Wrap(failure.InvalidInput, "Invalid request", err).
		WithDetails("reading part %d: %s", part, err.Error())
}

// ---------------------------------------------------------------------------
// POST /api/translation
// ---------------------------------------------------------------------------

// successBody is the JSON body of a successful translation.
type successBody struct {
	Message  []string `json:"message"`
	Code     int      `json:"code"`
	Metadata metadata `json:"metadata"`
}

type metadata struct {
	Model string          `json:"model"`
	Usage translate.Usage `json:"usage"`
}

func (s *Server) translation(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "Server.translation")
	defer span.End()

	s.limitBody(c)
	var req translate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		var ferr error
		if errors.As(err, &tooLarge) {
			ferr = failure.Wrap(failure.InvalidInput, "Invalid request", err).
				WithDetails("the request body exceeds %d bytes", tooLarge.Limit)
		} else {
			ferr = failure.Wrap(failure.InvalidInput, "Invalid request", err).
				WithDetails("the request body is not valid JSON: %s", err.Error())
		}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, ferr.Error())
		writeFailure(c, ferr)
		return
	}

	res, err := s.translator.Translate(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeFailure(c, err)
		return
	}

	span.SetAttributes(attribute.Int("translate.results", len(res.Translations)))
	c.JSON(http.StatusOK, successBody{
		Message:  res.Translations,
		Code:     http.StatusOK,
		Metadata: metadata{Model: res.Model, Usage: res.Usage},
	})
}

func (s *Server) limitBody(c *gin.Context) {
	if s.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	}
}
