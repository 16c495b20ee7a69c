package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Sk16er/Scholar-chat/application/commands/bus"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/Sk16er/Scholar-chat/pkg/common"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
	"github.com/Sk16er/Scholar-chat/pkg/utils"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// maxJSONBody caps JSON request bodies; uploads have their own limit
const maxJSONBody = 1 << 20

// Deps is what every handler needs
type Deps struct {
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Errors     *pkgerrors.ErrorHandler
	Logger     *zap.Logger
}

type base struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

func newBase(d Deps) base {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	errs := d.Errors
	if errs == nil {
		errs = pkgerrors.NewErrorHandler(logger, false)
	}
	return base{commandBus: d.CommandBus, queryBus: d.QueryBus, errors: errs, logger: logger}
}

func (b base) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	common.RespondWithMeta(w, status, data, &common.MetaInfo{
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	b.errors.Handle(w, r, err)
}

// decode parses and validates a JSON body. An empty body leaves v zeroed.
func (b base) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := common.ParseJSONBody(w, r, v, maxJSONBody); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.NewValidationError("request body too large")
		}
		return pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
	if err := utils.ValidateStruct(v); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}
