package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	expensesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_expenses_created_total",
		Help: "Expenses created, by split type.",
	}, []string{"split_type"})

	expensesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_expenses_deleted_total",
		Help: "Expenses deleted.",
	})

	participantsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_participants_settled_total",
		Help: "Expense participants marked as paid.",
	})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_notifications_total",
		Help: "Notification deliveries, by channel and outcome.",
	}, []string{"channel", "outcome"})

	summaryCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_summary_cache_lookups_total",
		Help: "Expense summary cache lookups, by result.",
	}, []string{"result"})
)
