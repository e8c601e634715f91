// Package cookie signs and verifies HTTP cookies and builds Set-Cookie headers.
//
// A Manager signs values with HMAC-SHA256. Several secrets can be configured for
// key rotation: the first one signs, all of them verify.
//
//	m, err := cookie.New([]string{currentSecret, previousSecret})
//	if err != nil {
//		return err
//	}
//	_ = m.SetSigned(w, "prefs", "dark")
//	v, err := m.GetSigned(r, "prefs")
//
// Header returns a response.HTTPHeader so handlers can set cookies by returning
// them next to their content:
//
//	return []any{cookie.Header("seen", "1", cookie.WithMaxAge(3600)), page}
package cookie
