package dto

// TrackViewBody 浏览上报的可选请求体
type TrackViewBody struct {
	WindowMinutes int `json:"window_minutes" validate:"min=0,max=10080"`
}

// TrackViewResp 浏览上报结果，无论是否计入都以成功返回
type TrackViewResp struct {
	Success bool   `json:"success"`
	Tracked bool   `json:"tracked"`
	Reason  string `json:"reason,omitempty"`
}
