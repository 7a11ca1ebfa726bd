package crypto

// ErrTrustElement is exported only during testing for use by the _test package.
var ErrTrustElement = errTrustElement
