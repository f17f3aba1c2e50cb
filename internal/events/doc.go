// Package events provides types and interfaces for raising background job
// requests without coupling the service layer to the job runner.
//
// The primary components are:
// - JobRequestEvent: a request to run a background assist job
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
