package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
	"github.com/mind-engage/mindengage-quiz/internal/util"
)

func writeJSON(w http.ResponseWriter, httpStatus int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(v)
}

// returnError maps the core error taxonomy onto status codes. Submission errors
// carry the offending question id.
func returnError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errs.IsNotFound(err):
		util.ReturnHTTPMessage(w, r, http.StatusNotFound, "notfound", err.Error())
	case errs.IsInvalid(err), errors.As(err, &verrs):
		util.ReturnHTTPMessage(w, r, http.StatusBadRequest, "badrequest", err.Error())
	default:
		if qid, ok := errs.QuestionOf(err); ok {
			util.WriteHTTPMessage(w, http.StatusUnprocessableEntity, util.HTTPMessage{
				Type:       "invalidsubmission",
				Message:    err.Error(),
				QuestionID: &qid,
			})
			return
		}
		glog.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		util.ReturnHTTPMessage(w, r, http.StatusInternalServerError, "error", "internal error")
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Invalid("bad id %q", s)
	}
	return id, nil
}
