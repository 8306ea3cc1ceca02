package tui

import (
	"github.com/csheth/cardstudio/internal/export"
	"github.com/csheth/cardstudio/internal/history"
	"github.com/csheth/cardstudio/internal/query"
)

type stage int

const (
	stageInput stage = iota
	stageContent
	stageEditor
	stageExporting
)

const heroTagline = "Turn a topic into a stack of shareable cards."

// Recommendations rotate two at a time on the entry screen.
var recommendations = []string{
	"2025 FW 패션 트렌드",
	"썸녀와 잘 되는 법",
	"직장인 점심 메뉴 추천",
	"주말 데이트 코스",
	"재테크 초보 투자 방법",
}

const (
	visibleRecommendations = 2
	skeletonTiles          = 5
	skeletonLabel          = "카드 뉴스 생성 중…"
	topicPlaceholder       = "주제를 입력해주세요."
	exportButtonLabel      = "전체 다운로드"
	trueSizeLabel          = "1080 × 1350"
	recentExportsShown     = 3
)

const (
	minContentWidth     = 40
	horizontalPadding   = 4
	defaultWindowWidth  = 100
	defaultWindowHeight = 32
)

type contentResultMsg struct {
	topic  string
	result query.Result
}

type exportProgressMsg struct {
	done  int
	total int
}

type exportResultMsg struct {
	topic  string
	result export.Result
	err    error
}

type historyLoadedMsg struct {
	records []history.Record
	err     error
}
