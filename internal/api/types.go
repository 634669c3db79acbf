package api

import "encoding/json"

// This file is the only place that knows the backend's wire shapes.
// Everything else depends on these structs, never on raw JSON.

// CreateSessionRequest starts a learning session for a (user, topic) pair.
type CreateSessionRequest struct {
	UserID  int `json:"userId"`
	TopicID int `json:"topicId"`
}

// SessionResponse is the backend's acknowledgement of a new session.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	UserID    int    `json:"userId"`
	TopicID   int    `json:"topicId"`
	CreatedAt string `json:"createdAt"`
}

// ChatRequest carries one learner utterance plus the stage-specific mode.
type ChatRequest struct {
	TopicID   int    `json:"topicId"`
	Message   string `json:"message"`
	UserID    int    `json:"userId"`
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode"`
}

// ChatResponse holds the tutor's reply text.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ExpPoint is one element of the completion reward breakdown.
type ExpPoint struct {
	Element string `json:"element"`
	Value   int    `json:"value"`
}

// CompleteRequest finishes a session and claims its EXP.
type CompleteRequest struct {
	UserID  int `json:"userId"`
	TopicID int `json:"topicId"`
}

// CompleteResponse is the reward breakdown for a finished session.
type CompleteResponse struct {
	Success   bool       `json:"success"`
	SessionID string     `json:"sessionId"`
	ExpPoints []ExpPoint `json:"expPoints"`
	TotalExp  int        `json:"totalExp"`
	Level     int        `json:"level"`
	Message   string     `json:"message"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
}

// User is the account snapshot returned alongside a token.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
}

// AuthResponse is shared by login and register.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// Topic is one studyable topic within a course.
type Topic struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CourseID    int    `json:"courseId"`
}

// Profile is the authenticated user's profile payload.
type Profile struct {
	User     User   `json:"user"`
	TotalExp int    `json:"totalExp"`
	Level    int    `json:"level"`
	Plan     string `json:"plan"`
}

// ProfileResponse wraps Profile in the backend's success envelope.
type ProfileResponse struct {
	Success bool    `json:"success"`
	Data    Profile `json:"data"`
}

// CheckoutRequest asks the backend to create a payment checkout session.
type CheckoutRequest struct {
	PriceID       string `json:"priceId"`
	Quantity      int    `json:"quantity"`
	Mode          string `json:"mode"`
	CustomerEmail string `json:"customerEmail"`
	UserID        int    `json:"userId"`
	PlanID        string `json:"planId"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
}

// CheckoutSession is the created checkout session. Older backend builds used
// "url"/"id" instead of "checkoutUrl"/"sessionId"; both spellings decode.
type CheckoutSession struct {
	URL       string
	SessionID string
}

func (c *CheckoutSession) UnmarshalJSON(data []byte) error {
	var raw struct {
		CheckoutURL string `json:"checkoutUrl"`
		URL         string `json:"url"`
		SessionID   string `json:"sessionId"`
		ID          string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.URL = raw.CheckoutURL
	if c.URL == "" {
		c.URL = raw.URL
	}
	c.SessionID = raw.SessionID
	if c.SessionID == "" {
		c.SessionID = raw.ID
	}
	return nil
}
