// Package session keeps a small key/value session in a signed cookie.
//
// The Manager derives its signing key from the application secret with HKDF,
// so any secret length works. Middleware loads the session into the request
// context; handlers read and mutate it through FromContext, and a changed session
// is written back before the response header goes out:
//
//	mgr, err := session.NewManager(secret, logger, session.WithCookieName("sid"))
//	if err != nil {
//		return err
//	}
//	http.Handle("/", mgr.Middleware(app))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		sess := session.FromContext(r.Context())
//		sess["visits"] = 1
//	}
package session
