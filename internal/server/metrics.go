package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_resolutions_total",
		Help: "Dashboard resolutions served, labelled by winning assignment level.",
	}, []string{"source"})

	blueprintMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_blueprint_mutations_total",
		Help: "Blueprint store mutations accepted over HTTP.",
	}, []string{"op"})

	assignmentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_assignment_mutations_total",
		Help: "Assignment store mutations accepted over HTTP.",
	}, []string{"op"})

	builderSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_builder_saves_total",
		Help: "Builder session save attempts by outcome.",
	}, []string{"result"})
)
