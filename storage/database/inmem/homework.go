package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/homework"
)

type homeworkRepo struct {
	mu          sync.RWMutex
	homeworks   map[string]homework.Homework
	submissions map[string]homework.Submission
}

var _ homework.Repository = (*homeworkRepo)(nil)

func NewHomeworkRepository() homework.Repository {
	return &homeworkRepo{
		homeworks:   make(map[string]homework.Homework),
		submissions: make(map[string]homework.Submission),
	}
}

func (repo *homeworkRepo) CreateHomework(_ context.Context, hw *homework.Homework, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.homeworks[hw.ID] = *hw
	return nil
}

func (repo *homeworkRepo) GetHomework(_ context.Context, id string, _ ...core.DBExecutor) (homework.Homework, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if hw, ok := repo.homeworks[id]; ok {
		return hw, nil
	}
	return homework.Homework{}, homework.ErrNotFound
}

func (repo *homeworkRepo) GetHomeworks(_ context.Context, _ ...core.DBExecutor) ([]homework.Homework, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	hws := make([]homework.Homework, 0, len(repo.homeworks))
	for _, hw := range repo.homeworks {
		hws = append(hws, hw)
	}
	sort.Slice(hws, func(i, j int) bool { return hws[i].DueDate.Before(hws[j].DueDate) })
	return hws, nil
}

func (repo *homeworkRepo) GetHomeworksByTeacher(_ context.Context, teacherID string, _ ...core.DBExecutor) ([]homework.Homework, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var hws []homework.Homework
	for _, hw := range repo.homeworks {
		if hw.AssignedBy == teacherID {
			hws = append(hws, hw)
		}
	}
	sort.Slice(hws, func(i, j int) bool { return hws[i].DueDate.Before(hws[j].DueDate) })
	return hws, nil
}

func (repo *homeworkRepo) CreateSubmission(_ context.Context, sub *homework.Submission, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.submissions[sub.ID] = *sub
	return nil
}

func (repo *homeworkRepo) GetSubmission(_ context.Context, id string, _ ...core.DBExecutor) (homework.Submission, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if sub, ok := repo.submissions[id]; ok {
		return sub, nil
	}
	return homework.Submission{}, homework.ErrSubmissionNotFound
}

func (repo *homeworkRepo) GetSubmissionsByHomework(_ context.Context, homeworkID string, _ ...core.DBExecutor) ([]homework.Submission, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var subs []homework.Submission
	for _, sub := range repo.submissions {
		if sub.HomeworkID == homeworkID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *homeworkRepo) GetSubmissionsByStudent(_ context.Context, studentID string, _ ...core.DBExecutor) ([]homework.Submission, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var subs []homework.Submission
	for _, sub := range repo.submissions {
		if sub.StudentID == studentID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *homeworkRepo) UpdateSubmission(_ context.Context, sub *homework.Submission, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.submissions[sub.ID]; !ok {
		return homework.ErrSubmissionNotFound
	}
	repo.submissions[sub.ID] = *sub
	return nil
}
