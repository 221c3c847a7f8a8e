package dto

import "time"

type UserAnalyticsDTO struct {
	UserID            uint64    `json:"userId"`
	ViewsCount        int64     `json:"viewsCount"`
	ContentViewsCount int64     `json:"contentViewsCount"`
	FollowersCount    int64     `json:"followersCount"`
	FollowingCount    int64     `json:"followingCount"`
	PostsCount        int64     `json:"postsCount"`
	VideosCount       int64     `json:"videosCount"`
	PhotosCount       int64     `json:"photosCount"`
	LikesCount        int64     `json:"likesCount"`
	CommentsCount     int64     `json:"commentsCount"`
	SharesCount       int64     `json:"sharesCount"`
	LastCalculatedAt  time.Time `json:"lastCalculatedAt"`
}

type PostAnalyticsDTO struct {
	PostID           uint64    `json:"postId"`
	ViewsCount       int64     `json:"viewsCount"`
	LikesCount       int64     `json:"likesCount"`
	CommentsCount    int64     `json:"commentsCount"`
	SharesCount      int64     `json:"sharesCount"`
	BookmarksCount   int64     `json:"bookmarksCount"`
	ReportsCount     int64     `json:"reportsCount"`
	ReactionsCount   int64     `json:"reactionsCount"`
	TotalEngagements int64     `json:"totalEngagements"`
	EngagementRate   float64   `json:"engagementRate"`
	LastCalculatedAt time.Time `json:"lastCalculatedAt"`
}

type VideoAnalyticsDTO struct {
	VideoID          uint64    `json:"videoId"`
	ViewsCount       int64     `json:"viewsCount"`
	LikesCount       int64     `json:"likesCount"`
	CommentsCount    int64     `json:"commentsCount"`
	SharesCount      int64     `json:"sharesCount"`
	TotalWatchTime   int64     `json:"totalWatchTime"`
	AverageWatchTime float64   `json:"averageWatchTime"`
	CompletionRate   float64   `json:"completionRate"`
	LastCalculatedAt time.Time `json:"lastCalculatedAt"`
}

type PhotoAnalyticsDTO struct {
	PhotoID          uint64    `json:"photoId"`
	ViewsCount       int64     `json:"viewsCount"`
	LikesCount       int64     `json:"likesCount"`
	CommentsCount    int64     `json:"commentsCount"`
	SharesCount      int64     `json:"sharesCount"`
	LastCalculatedAt time.Time `json:"lastCalculatedAt"`
}
