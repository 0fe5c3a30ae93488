package identity

import (
	"context"
	"net/http"
)

// authTransport replaces the Authorization header go-gh sets with one
// computed per request. go-gh only fills the header when it is absent
// and runs before the base transport, so the value set here wins.
type authTransport struct {
	base          http.RoundTripper
	authorization func(ctx context.Context) (string, error)
}

func newAuthTransport(base http.RoundTripper, authorization func(context.Context) (string, error)) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, authorization: authorization}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	value, err := t.authorization(req.Context())
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", value)
	return t.base.RoundTrip(out)
}
