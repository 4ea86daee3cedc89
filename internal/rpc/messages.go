package rpc

import "time"

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Post struct {
	ID        string    `json:"id"`
	PostedBy  string    `json:"postedBy"`
	Body      string    `json:"body"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Deleted   bool      `json:"deleted"`
}

// MediaUpload is an attachment. FileType is IMAGE or VIDEO.
type MediaUpload struct {
	Filename string `json:"filename"`
	FileType string `json:"fileType"`
	Content  []byte `json:"content"`
}

type SignupRequest struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
}

// AuthResponse carries a session credential. ExpiresAt is in Unix milliseconds.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      *User  `json:"user"`
}

type LogoutRequest struct{}

type StatusResponse struct {
	Status string `json:"status"`
}

type RequestPasswordResetRequest struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type CreatePostRequest struct {
	Body   string       `json:"postBody"`
	Upload *MediaUpload `json:"upload,omitempty"`
}

type UpdatePostRequest struct {
	PostID string       `json:"postID"`
	Body   string       `json:"postUpdate"`
	Upload *MediaUpload `json:"uploadUpdate,omitempty"`
}

type DeletePostRequest struct {
	PostID string `json:"postID"`
}

type PostResponse struct {
	Post *Post `json:"post"`
}

type FollowRequest struct {
	UserID string `json:"userID"`
}

type PostsRequest struct {
	UserID string `json:"userID"`
}

type FeedRequest struct{}

type PostsResponse struct {
	Posts []*Post `json:"posts"`
}

type PingRequest struct{}

type PostAddedRequest struct{}
