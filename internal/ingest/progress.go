package ingest

// Stage 摄取流水线阶段
type Stage string

// Flow A 各阶段，顺序即状态机顺序
const (
	StageReceived           Stage = "received"
	StageOriginalUploaded   Stage = "original_uploaded"
	StageThumbnailGenerated Stage = "thumbnail_generated"
	StageThumbnailUploaded  Stage = "thumbnail_uploaded"
	StageExifExtracted      Stage = "exif_extracted"
	StageTagsReconciled     Stage = "tags_reconciled"
	StageRecordCommitted    Stage = "record_committed"
)

// Event 进度事件，由编排器在每个阶段完成后发出
type Event struct {
	Stage   Stage `json:"stage"`
	Percent int   `json:"percent"`
}

// ProgressFunc 进度回调；nil 表示调用方不关心进度
type ProgressFunc func(Event)

var stagePercent = map[Stage]int{
	StageReceived:           10,
	StageOriginalUploaded:   35,
	StageThumbnailGenerated: 50,
	StageThumbnailUploaded:  65,
	StageExifExtracted:      80,
	StageTagsReconciled:     90,
	StageRecordCommitted:    100,
}

func emit(fn ProgressFunc, stage Stage) {
	if fn == nil {
		return
	}
	fn(Event{Stage: stage, Percent: stagePercent[stage]})
}
