// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server,
//		server.WithLogger(log),
//		server.WithShutdownHook(app.Shutdown),
//	)
//	if err != nil {
//		return err
//	}
//
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(srv.Run(ctx, app))
//	return eg.Wait()
//
// When ctx is canceled the server stops accepting connections, waits for
// in-flight requests, then runs the shutdown hooks, all within the shutdown
// timeout (30s by default).
//
// The default write timeout is zero so server-sent event streams are not cut
// off. Set SERVER_WRITE_TIMEOUT when no route streams.
package server
