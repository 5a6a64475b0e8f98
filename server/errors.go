package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minios-linux/lokitd/failure"
	"github.com/minios-linux/lokitd/i18n"
)

// errorBody is the JSON body of every failed request.
type errorBody struct {
	Error           string          `json:"error"`
	Code            int             `json:"code"`
	Details         string          `json:"details,omitempty"`
	RawResponse     string          `json:"rawResponse,omitempty"`
	CleanedResponse string          `json:"cleanedResponse,omitempty"`
	Original        []string        `json:"original,omitempty"`
	Translated      json.RawMessage `json:"translated,omitempty"`
}

// writeFailure aborts c with the JSON form of err. Errors that carry no
// *failure.Error are reported as UpstreamUnknownFailure without details.
func writeFailure(c *gin.Context, err error) {
	_ = c.Error(err)

	fe, ok := failure.As(err)
	if !ok {
		fe = failure.Wrap(failure.UpstreamUnknownFailure, "Internal server error", err)
	}

	body := errorBody{
		Error:           fe.Message,
		Code:            fe.Status(),
		RawResponse:     fe.Diagnostics.RawResponse,
		CleanedResponse: fe.Diagnostics.CleanedResponse,
		Original:        fe.Diagnostics.Original,
	}
	// Validation failures always echo what the provider returned, even
	// an empty array or null.
	if fe.Kind == failure.ValidationFailure {
		if data, err := json.Marshal(fe.Diagnostics.Translated); err == nil {
			body.Translated = data
		}
	}
	if fe.DetailFormat != "" {
		lang := i18n.Match(c.GetHeader("Accept-Language"))
		body.Details = i18n.Sprintf(lang, fe.DetailFormat, fe.DetailArgs...)
	}

	c.AbortWithStatusJSON(body.Code, body)
}

func notFound(c *gin.Context) {
	lang := i18n.Match(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusNotFound, errorBody{
		Error:   "Not found",
		Code:    http.StatusNotFound,
		Details: i18n.Sprintf(lang, "no route for %s %s", c.Request.Method, c.Request.URL.Path),
	})
}
