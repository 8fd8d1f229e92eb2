package rest

import (
	"sync"

	"github.com/go-chi/chi/v5"
)

var (
	service *Service
	handler *Handler

	serviceOnce sync.Once
	handlerOnce sync.Once
)

func ProvideService(args *ContainerArgs) *Service {
	serviceOnce.Do(func() {
		service = NewService(args)
	})
	return service
}

func ProvideHandler(svc *Service) *Handler {
	handlerOnce.Do(func() {
		handler = NewHandler(svc)
	})
	return handler
}

func ApplyRouter(args *ContainerArgs) func(chi.Router) {
	h := ProvideHandler(ProvideService(args))

	return func(r chi.Router) {
		r.Post("/probe", h.Probe)

		r.Post("/downloads", h.Start)
		r.Get("/downloads/{id}", h.Snapshot)
		r.Post("/downloads/{id}/cancel", h.Cancel)
		r.Get("/downloads/{id}/file", h.Artifact)

		r.Get("/cookies", h.ListCookies)
		r.Post("/cookies", h.UploadCookie)
		r.Delete("/cookies/{name}", h.DeleteCookie)

		r.Get("/platform/advisory", h.Advisory)
		r.Get("/activity/recent", h.RecentActivity)
	}
}
