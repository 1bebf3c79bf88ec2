package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrPingFailed             = errors.New("mongo ping failed")
	ErrAttachFailed           = errors.New("failed to attach schema")
)
