// Package clientip extracts the caller's address from a request.
//
// Proxy headers are consulted first, in this order: CF-Connecting-IP,
// DO-Connecting-IP, X-Forwarded-For (left-most entry) and X-Real-IP. The
// RemoteAddr host is the fallback.
//
//	ip := clientip.GetIP(r)
//
// Headers are trusted as sent. Only deploy behind a proxy that overwrites them.
package clientip
