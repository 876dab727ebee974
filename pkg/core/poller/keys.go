package poller

// 视图快照键（对外导出）
const (
	KeyChains     = "chains"     // 任务链列表快照
	KeyStrategies = "strategies" // 策略快照
	KeyKnowledge  = "knowledge"  // 知识图谱快照
)
