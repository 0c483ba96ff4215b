package domain

type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture"`
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

// PlaceholderUser — заглушка для фреймов от неизвестного отправителя.
func PlaceholderUser(username string) UserRef {
	if username == "" {
		username = "unknown"
	}
	return UserRef{ID: 0, Username: username}
}
