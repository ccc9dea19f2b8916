package mongo

import "errors"

var (
	ErrConnectionFailed  = errors.New("mongo.connection_failed")
	ErrHealthcheckFailed = errors.New("mongo.healthcheck_failed")
)
