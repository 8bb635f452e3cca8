package service

import (
	"bytes"
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ResultService struct {
	Assessments *repository.AssessmentRepository
	Courses     *repository.CourseRepository
	Users       *repository.UserRepository
}

func NewResultService(assessments *repository.AssessmentRepository, courses *repository.CourseRepository, users *repository.UserRepository) *ResultService {
	return &ResultService{Assessments: assessments, Courses: courses, Users: users}
}

// Grade 将总分换算为等级
func Grade(total int) string {
	switch {
	case total >= 70:
		return "A"
	case total >= 60:
		return "B"
	case total >= 50:
		return "C"
	case total >= 40:
		return "D"
	case total >= 30:
		return "E"
	}
	return "F"
}

type ResultSummary struct {
	AssessmentID string    `json:"assessmentId"`
	EarnedMarks  int       `json:"earnedMarks"`
	TotalMarks   int       `json:"totalMarks"`
	AttemptedAt  time.Time `json:"attemptedAt"`
}

type CourseResult struct {
	CourseID    string         `json:"courseId"`
	CourseTitle string         `json:"courseTitle"`
	CourseCode  string         `json:"courseCode"`
	CA          *ResultSummary `json:"ca,omitempty"`
	Exam        *ResultSummary `json:"exam,omitempty"`
	TotalEarned *int           `json:"totalEarned,omitempty"`
	Grade       *string        `json:"grade,omitempty"`
}

type latestPair struct {
	ca, exam *model.Result
}

// pickLatest 每门课程保留最近一次的 CA 和考试成绩
func pickLatest(results []model.Result) map[string]*latestPair {
	byCourse := make(map[string]*latestPair)
	for i := range results {
		r := &results[i]
		p, ok := byCourse[r.CourseID]
		if !ok {
			p = &latestPair{}
			byCourse[r.CourseID] = p
		}
		switch r.Type {
		case model.AssessmentCA:
			if p.ca == nil || r.AttemptedAt.After(p.ca.AttemptedAt) {
				p.ca = r
			}
		case model.AssessmentExam:
			if p.exam == nil || r.AttemptedAt.After(p.exam.AttemptedAt) {
				p.exam = r
			}
		}
	}
	return byCourse
}

func summarize(r *model.Result) *ResultSummary {
	if r == nil {
		return nil
	}
	return &ResultSummary{
		AssessmentID: r.AssessmentID,
		EarnedMarks:  r.EarnedMarks,
		TotalMarks:   r.TotalMarks,
		AttemptedAt:  r.AttemptedAt,
	}
}

// combine 计算总分和等级，没有成绩时两者为 nil
func (p *latestPair) combine(cr *CourseResult) {
	if p == nil || (p.ca == nil && p.exam == nil) {
		return
	}
	cr.CA = summarize(p.ca)
	cr.Exam = summarize(p.exam)
	total := 0
	if p.ca != nil {
		total += p.ca.EarnedMarks
	}
	if p.exam != nil {
		total += p.exam.EarnedMarks
	}
	grade := Grade(total)
	cr.TotalEarned = &total
	cr.Grade = &grade
}

// Results 用户已选或有成绩的每门课程返回一行
func (s *ResultService) Results(ctx context.Context, userID uint) ([]CourseResult, error) {
	results, err := s.Assessments.ResultsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.Courses.EnrolledCourseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest := pickLatest(results)
	ids := make([]string, 0, len(enrolled)+len(latest))
	seen := make(map[string]struct{})
	for _, id := range enrolled {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for id := range latest {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	courses, err := s.Courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]CourseResult, 0, len(courses))
	for _, c := range courses {
		cr := CourseResult{CourseID: c.ID, CourseTitle: c.Title, CourseCode: c.CourseCode}
		latest[c.ID].combine(&cr)
		out = append(out, cr)
	}
	return out, nil
}

var exportHeader = []interface{}{"User ID", "Name", "Email", "CA", "Exam", "Total", "Grade"}

// ExportCourseResults 将课程成绩导出为 xlsx 工作簿
func (s *ResultService) ExportCourseResults(ctx context.Context, scope ScopeContext, courseID string) ([]byte, string, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, "", err
	}
	if !CanManageCourse(scope, course) {
		return nil, "", util.ErrCourseAccessDenied
	}

	results, err := s.Assessments.ResultsForCourse(ctx, courseID)
	if err != nil {
		return nil, "", err
	}

	byUser := make(map[uint][]model.Result)
	for _, r := range results {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}
	userIDs := make([]uint, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	users, err := s.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, "", err
	}
	userByID := make(map[uint]model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Log.Warn("closing workbook failed", zap.Error(err))
		}
	}()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, "", err
	}

	for i, uid := range userIDs {
		var cr CourseResult
		pickLatest(byUser[uid])[courseID].combine(&cr)

		row := []interface{}{uid, userByID[uid].Name, userByID[uid].Email, "", "", "", ""}
		if cr.CA != nil {
			row[3] = cr.CA.EarnedMarks
		}
		if cr.Exam != nil {
			row[4] = cr.Exam.EarnedMarks
		}
		if cr.TotalEarned != nil {
			row[5] = *cr.TotalEarned
			row[6] = *cr.Grade
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", err
		}
	}

	var buf *bytes.Buffer
	if buf, err = f.WriteToBuffer(); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("%s-results.xlsx", course.Slug)
	return buf.Bytes(), filename, nil
}
