package healthcheck

import "errors"

var ErrDisabled = errors.New("backend disabled")
