// Package organize defines the shared data model passed between the library
// and folder coordinators, their activities, and the operator query surface.
// Every value is created by exactly one component and crosses component
// boundaries by value.
package organize
