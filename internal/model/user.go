package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	Id          int       `gorm:"primarykey"`
	Username    string    `json:"username" gorm:"type:char(96);uniqueIndex"`
	Nickname    string    `json:"nickname" gorm:"type:char(96)"`
	Password    string    `json:"-" gorm:"type:char(96)"`
	AccessToken string    `json:"access_token" gorm:"type:char(96);uniqueIndex"`
	IsAdmin     bool      `json:"is_admin" gorm:"default:false"`
	CreatedTime time.Time `json:"created_time" gorm:"datetime;autoCreateTime"`
}

func NewAccessToken() string {
	return "sk-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SetPassword stores the bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func CreateUser(user *User) error {
	return DB.Create(user).Error
}

func GetUserById(id int) (*User, error) {
	var user User
	err := DB.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func GetUserByToken(token string) (*User, error) {
	var user User
	err := DB.Where("access_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(username string) (*User, error) {
	var user User
	err := DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func UpdateUser(user *User) error {
	return DB.Save(user).Error
}

func DeleteUser(id int) error {
	return DB.Delete(&User{}, id).Error
}

func CountUsers() (int, error) {
	var count int64
	err := DB.Model(&User{}).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func GetUsers(start, limit int) ([]*User, error) {
	var users []*User
	err := DB.Order("id desc").Offset(start).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
