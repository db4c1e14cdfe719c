package donations

import "errors"

// ErrHTTPAPIDisabled is returned by Module.Handler when features.http_api is off.
var ErrHTTPAPIDisabled = errors.New("donations: http api feature is disabled")
