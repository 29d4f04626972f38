package api

import (
	"context"
	"errors"
	"io"
	"strconv"
)

var errNilRequest = errors.New("request is nil")

func nilRequest(op string) error {
	return &ValidationError{Operation: op, Err: errNilRequest}
}

type param struct {
	name  string
	value string
}

func boolParam(name string, v bool) param {
	return param{name: name, value: strconv.FormatBool(v)}
}

// operation is the declarative description of one remote endpoint call.
type operation struct {
	name           string
	method         string
	path           string
	pathParams     []param
	queryParams    []param
	form           []FormField
	absorbNotFound bool
}

type validatable interface {
	Validate() error
}

// resolveURL substitutes path parameters into the template and appends the
// non-empty query parameters in declaration order.
func (op operation) resolveURL(root string) (string, error) {
	u := root + op.path
	for _, p := range op.pathParams {
		var err error
		if u, err = AddPathParameter(u, p.name, p.value); err != nil {
			return "", err
		}
	}
	for _, p := range op.queryParams {
		u = AddQueryParameterToURL(u, p.name, p.value)
	}
	return u, nil
}

// dispatch validates req, builds the URL and invokes the call. A 404 result
// is returned as an error unless the operation absorbs it, in which case the
// caller sees a Result whose Found reports false.
func (a *AssemblyAPI) dispatch(ctx context.Context, req validatable, op operation) (*Result, error) {
	call, err := a.prepare(req, op)
	if err != nil {
		return nil, err
	}

	res, err := a.invoker.Invoke(ctx, call)
	if err != nil {
		return nil, err
	}
	if !res.Found() && !op.absorbNotFound {
		return nil, res.Err()
	}
	return res, nil
}

// dispatchBinary is dispatch for operations that return a document. A 404
// yields (nil, nil).
func (a *AssemblyAPI) dispatchBinary(ctx context.Context, req validatable, op operation) (io.ReadCloser, error) {
	call, err := a.prepare(req, op)
	if err != nil {
		return nil, err
	}
	return a.invoker.InvokeBinary(ctx, call)
}

func (a *AssemblyAPI) prepare(req validatable, op operation) (Call, error) {
	if req == nil {
		return Call{}, nilRequest(op.name)
	}
	if err := req.Validate(); err != nil {
		return Call{}, &ValidationError{Operation: op.name, Err: err}
	}

	u, err := op.resolveURL(a.config.APIRootURL())
	if err != nil {
		return Call{}, err
	}
	return Call{Method: op.method, URL: u, Form: op.form}, nil
}
