package models

import "time"

// Group statuses.
const (
	GroupStatusPending  = "pending"
	GroupStatusComplete = "complete"
)

// Group is a group-buy: members pool orders for a product until enough of
// them have joined.
type Group struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Code          string        `gorm:"uniqueIndex;not null;size:36" json:"code"`
	Name          string        `gorm:"size:255;not null" json:"name"`
	AdminID       uint          `gorm:"not null;index" json:"admin_id"`
	ProductID     uint          `gorm:"not null" json:"product_id"`
	MembersNeeded int           `gorm:"not null" json:"members_needed"`
	Status        string        `gorm:"size:20;not null;index" json:"status"`
	Members       []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName specifies the table name for Group model.
func (Group) TableName() string {
	return "groups"
}

// Pending returns how many members are still needed.
func (g *Group) Pending() int {
	n := g.MembersNeeded - len(g.Members)
	if n < 0 {
		return 0
	}
	return n
}

// HasMember reports whether the user already belongs to the group.
func (g *Group) HasMember(userID uint) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// GroupMember is a user's participation in a group.
type GroupMember struct {
	ID       uint        `gorm:"primaryKey" json:"-"`
	GroupID  uint        `gorm:"not null;uniqueIndex:idx_group_member" json:"-"`
	UserID   uint        `gorm:"not null;uniqueIndex:idx_group_member" json:"user_id"`
	Items    []GroupItem `gorm:"foreignKey:GroupMemberID;constraint:OnDelete:CASCADE" json:"items"`
	JoinedAt time.Time   `gorm:"not null" json:"joined_at"`
}

// TableName specifies the table name for GroupMember model.
func (GroupMember) TableName() string {
	return "group_members"
}

// GroupItem is a product and count a member contributes.
type GroupItem struct {
	ID            uint `gorm:"primaryKey" json:"-"`
	GroupMemberID uint `gorm:"not null;index" json:"-"`
	ProductID     uint `gorm:"not null" json:"product_id"`
	Count         int  `gorm:"not null" json:"count"`
}

// TableName specifies the table name for GroupItem model.
func (GroupItem) TableName() string {
	return "group_items"
}

// GroupMessage is a chat message posted to a group by one of its members.
type GroupMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GroupID    uint      `gorm:"not null;index:idx_group_messages_group_sent" json:"group_id"`
	SenderID   uint      `gorm:"not null" json:"sender_id"`
	SenderName string    `gorm:"->;-:migration" json:"sender_name,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	SentAt     time.Time `gorm:"not null;index:idx_group_messages_group_sent" json:"sent_at"`
}

// TableName specifies the table name for GroupMessage model.
func (GroupMessage) TableName() string {
	return "group_messages"
}
