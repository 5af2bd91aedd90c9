package handler

import (
	"registration-service/internal/tenant"
)

var (
	provisioner *tenant.Provisioner
	scopeRouter *tenant.Router
)

// Initialize wires the handlers to the tenant provisioner and session router
func Initialize(p *tenant.Provisioner, r *tenant.Router) {
	provisioner = p
	scopeRouter = r
}
