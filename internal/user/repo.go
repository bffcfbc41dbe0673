package user

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already exists")
)

type Repo struct {
	DB *gorm.DB
}

func (r *Repo) Create(ctx context.Context, u *User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repo) ByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Update(ctx context.Context, u *User) error {
	if err := r.DB.WithContext(ctx).Save(u).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Delete removes the user and returns the deleted record.
func (r *Repo) Delete(ctx context.Context, id uint64) (*User, error) {
	u, err := r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(&User{}, id).Error; err != nil {
		return nil, err
	}
	return u, nil
}

type ListParams struct {
	Page   int
	Limit  int
	Search string // case-insensitive name filter
}

type Page struct {
	Users      []User
	Page       int
	Limit      int
	TotalUsers int64
	TotalPages int
}

func (r *Repo) List(ctx context.Context, p ListParams) (*Page, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, err
	}

	q := r.DB.WithContext(ctx).Model(&User{}).Order("id asc")
	if p.Search != "" {
		q = q.Where("name ILIKE ?", "%"+p.Search+"%")
	}

	var users []User
	err := q.Offset((p.Page - 1) * p.Limit).Limit(p.Limit).Find(&users).Error
	if err != nil {
		return nil, err
	}

	return &Page{
		Users:      users,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalUsers: total,
		TotalPages: PageCount(total, p.Limit),
	}, nil
}

// PageCount is the ceiling of total/limit.
func PageCount(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// translate maps driver errors onto package sentinels. The unique index on
// email is the only constraint that can trip here.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}
