// Package observer provides an observable value whose observers are bound under an owner with an [eventhost.EventHost].
package observer
