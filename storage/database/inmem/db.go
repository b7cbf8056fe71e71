// Package inmem provides map-backed repositories. They back the API tests and
// the -inmem dev mode; behavior mirrors the postgres repositories, including
// the cascade-null detach rules.
package inmem

import (
	"sync"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
)

type DB struct {
	mu sync.RWMutex

	seq    int
	tokSeq int64

	superAdmins map[int]*auth.SuperAdmin
	schools     map[int]*school.School
	teachers    map[int]*school.Teacher
	students    map[int]*school.Student
	classes     map[int]*school.Class
	tokens      map[int64]*auth.Token
}

func NewDB() *DB {
	db := new(DB)
	db.reset()
	return db
}

// Reset drops all rows; test helper.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.reset()
}

func (db *DB) reset() {
	db.seq = 0
	db.tokSeq = 0
	db.superAdmins = make(map[int]*auth.SuperAdmin)
	db.schools = make(map[int]*school.School)
	db.teachers = make(map[int]*school.Teacher)
	db.students = make(map[int]*school.Student)
	db.classes = make(map[int]*school.Class)
	db.tokens = make(map[int64]*auth.Token)
}

// nextID must be called with db.mu held.
func (db *DB) nextID() int {
	db.seq++
	return db.seq
}

func (db *DB) nextTokenID() int64 {
	db.tokSeq++
	return db.tokSeq
}
