package jobs

// 任务名称，运维接口按名称触发.
const (
	JobStatusReconcile         = "food.status.reconcile"
	JobStatusReconcileMidnight = "food.status.reconcile.midnight"
	JobTrashAutoClean          = "food.trash.auto_clean"
)
