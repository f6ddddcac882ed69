package controllers

import (
	"lms/progress"
	"lms/store"
	"lms/store/gormstore"
)

// Handler carries the storage and the progress engine the course
// endpoints run against. Plain catalog reads still go through the
// shared gorm handle; everything that touches derived progress state
// goes through the injected ledgers and service so tests can swap in
// the in-memory implementations.
type Handler struct {
	Catalog     *gormstore.Catalog
	Enrollments store.EnrollmentLedger
	Completions store.CompletionLedger
	Progress    *progress.Service
}
