// Package grantly relays authorization work between a game server and a
// remote chat platform that cannot call each other directly.
//
// Outbound work items land in a shared relational store (or arrive over a
// webhook); a polling dispatcher claims them, validates their payloads and
// turns them into interactive approve/deny messages delivered privately to
// the entitled human. A race-safe decision processor applies the human's
// choice exactly once and reports the outcome back to the origin system.
//
// The engine is designed to be embedded in host applications. End-users
// typically interact via the high-level Service façade exposed by the root
// package:
//
//	srv, _ := grantly.New(
//		grantly.WithCourier(courier),
//		grantly.WithGranter(granter),
//		grantly.WithLinker(linker),
//	)
//	srv.Start(ctx)
//	defer srv.Shutdown(ctx)
//
// For more details see the individual sub-packages.
package grantly
