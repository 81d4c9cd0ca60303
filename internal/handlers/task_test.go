package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskboard/taskboard-api/internal/constants"
	"github.com/taskboard/taskboard-api/internal/database"
	"github.com/taskboard/taskboard-api/internal/dto"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/notify"
	"github.com/taskboard/taskboard-api/internal/repository"
	"github.com/taskboard/taskboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingMailer captures outgoing email instead of sending it.
type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Email
}

func (m *recordingMailer) Send(_ context.Context, email notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) Sent() []notify.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Email(nil), m.sent...)
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db             *gorm.DB
	recorder       *recordingMailer
	dispatcher     *notify.Dispatcher
	notifications  []notify.Notification
	notificationMu sync.Mutex
	handler        *TaskHandler
	commentHandler *CommentHandler
	taskService    *services.TaskService
	commentService *services.CommentService
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Comment{},
		&models.Invitation{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.recorder = &recordingMailer{}
	suite.notifications = nil
	suite.dispatcher = notify.NewDispatcher(suite.recorder, notify.WithResultCallback(func(r notify.Result) {
		suite.notificationMu.Lock()
		defer suite.notificationMu.Unlock()
		suite.notifications = append(suite.notifications, r.Notification)
	}))

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	commentRepo := repository.NewCommentRepository(suite.db)

	suite.taskService = services.NewTaskService(taskRepo, userRepo, suite.dispatcher, "http://localhost:3000")
	suite.commentService = services.NewCommentService(commentRepo, taskRepo)
	suite.handler = NewTaskHandler(suite.taskService)
	suite.commentHandler = NewCommentHandler(suite.commentService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	suite.dispatcher.Close()
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// drainNotifications waits for every enqueued notification to be attempted.
func (suite *TaskHandlerTestSuite) drainNotifications() []notify.Notification {
	suite.dispatcher.Close()
	suite.notificationMu.Lock()
	defer suite.notificationMu.Unlock()
	return append([]notify.Notification(nil), suite.notifications...)
}

// Helper functions to create test data

func (suite *TaskHandlerTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		Email:        email,
		FullName:     "Test User " + email,
		PasswordHash: "hashedpassword",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID string, assigneeID *string) *models.Task {
	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		Status:      models.TaskStatusNotPicked,
		Priority:    models.PriorityMedium,
		CreatorID:   creatorID,
		AssigneeID:  assigneeID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

// createAuthContext simulates RequireAuth having resolved the user.
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyCurrentUser, *user)
	}

	return c, w
}

// setTaskContext simulates RequireTaskAccess middleware.
func (suite *TaskHandlerTestSuite) setTaskContext(c *gin.Context, task models.Task) {
	c.Set(constants.ContextKeyTask, task)
}

func (suite *TaskHandlerTestSuite) TestListTasks_OnlyAssignedTasks() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)
	other := suite.createTestUser("other@example.com", models.RoleEmployee)

	mine := suite.createTestTask("Mine", admin.ID, &employee.ID)
	suite.createTestTask("Someone else's", admin.ID, &other.ID)
	suite.createTestTask("Unassigned", admin.ID, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, employee)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 1)
	assert.Equal(suite.T(), mine.ID, response.Tasks[0].ID)
	assert.Equal(suite.T(), int64(1), response.Pagination.Total)
}

func (suite *TaskHandlerTestSuite) TestListTasks_NewestFirst() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)

	first := suite.createTestTask("First", admin.ID, &employee.ID)
	time.Sleep(10 * time.Millisecond)
	second := suite.createTestTask("Second", admin.ID, &employee.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, employee)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Tasks, 2)
	assert.Equal(suite.T(), second.ID, response.Tasks[0].ID)
	assert.Equal(suite.T(), first.ID, response.Tasks[1].ID)
}

func (suite *TaskHandlerTestSuite) TestListTasks_AllRequiresAdmin() {
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, employee)
	c.Request.URL.RawQuery = "all=true"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_AdminSeesEverything() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)

	suite.createTestTask("Assigned", admin.ID, &employee.ID)
	suite.createTestTask("Unassigned", admin.ID, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, admin)
	c.Request.URL.RawQuery = "all=true"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Tasks, 2)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_WithAssigneeNotifiesOnce() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)

	requestBody := map[string]interface{}{
		"title":       "Prepare Q1 report",
		"description": "Gather the numbers",
		"priority":    "high",
		"assignee_id": employee.ID,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Prepare Q1 report", response.Title)
	assert.Equal(suite.T(), models.TaskStatusNotPicked, response.Status)
	assert.Equal(suite.T(), models.PriorityHigh, response.Priority)

	notifications := suite.drainNotifications()
	suite.Require().Len(notifications, 1)
	assert.Equal(suite.T(), notify.KindTaskAssignment, notifications[0].Kind)
	suite.Require().Len(notifications[0].Email.To, 1)
	assert.Equal(suite.T(), employee.Email, notifications[0].Email.To[0].Email)

	// The task shows up in the assignee's list
	listCtx, listW := suite.createAuthContext("GET", "/api/tasks", nil, employee)
	suite.handler.ListTasks(listCtx)
	var list dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(listW.Body.Bytes(), &list))
	suite.Require().Len(list.Tasks, 1)
	assert.Equal(suite.T(), response.ID, list.Tasks[0].ID)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnassignedSendsNothing() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	requestBody := map[string]interface{}{
		"title": "Backlog item",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Empty(suite.T(), suite.drainNotifications())
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	requestBody := map[string]interface{}{
		"description": "no title here",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownAssignee() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	requestBody := map[string]interface{}{
		"title":       "Bad assignee",
		"assignee_id": "does-not-exist",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus_ByAssignee() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)
	task := suite.createTestTask("Work item", admin.ID, &employee.ID)

	createdAt := task.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	body, _ := json.Marshal(map[string]string{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/"+task.ID+"/status", body, employee)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTaskStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.TaskStatusInProgress, response.Status)
	assert.True(suite.T(), response.UpdatedAt.After(createdAt))
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus_ByOtherEmployee() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)
	intruder := suite.createTestUser("intruder@example.com", models.RoleEmployee)
	task := suite.createTestTask("Work item", admin.ID, &employee.ID)

	body, _ := json.Marshal(map[string]string{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/"+task.ID+"/status", body, intruder)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTaskStatus(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus_BackwardTransitionAllowed() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)
	task := suite.createTestTask("Done item", admin.ID, &employee.ID)
	suite.Require().NoError(suite.db.Model(task).Update("status", models.TaskStatusCompleted).Error)

	body, _ := json.Marshal(map[string]string{"status": "not_picked"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/"+task.ID+"/status", body, admin)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTaskStatus(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.TaskStatusNotPicked, response.Status)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus_InvalidValue() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	task := suite.createTestTask("Work item", admin.ID, nil)

	body, _ := json.Marshal(map[string]string{"status": "on_hold"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/"+task.ID+"/status", body, admin)
	suite.setTaskContext(c, *task)

	suite.handler.UpdateTaskStatus(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ReassignNotifiesNewAssignee() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	before := suite.createTestUser("before@example.com", models.RoleEmployee)
	after := suite.createTestUser("after@example.com", models.RoleEmployee)
	task := suite.createTestTask("Handover", admin.ID, &before.ID)

	body, _ := json.Marshal(map[string]interface{}{"assignee_id": after.ID})
	c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, body, admin)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	notifications := suite.drainNotifications()
	suite.Require().Len(notifications, 1)
	assert.Equal(suite.T(), notify.KindTaskAssignment, notifications[0].Kind)
	assert.Equal(suite.T(), after.Email, notifications[0].Email.To[0].Email)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_SameAssigneeSendsNothing() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)
	task := suite.createTestTask("Stable", admin.ID, &employee.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"assignee_id": employee.ID,
		"title":       "Stable, retitled",
	})
	c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, body, admin)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), suite.drainNotifications())
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_WrongFieldTypeRejected() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	task := suite.createTestTask("Typed", admin.ID, nil)

	for _, payload := range []map[string]interface{}{
		{"title": 123},
		{"deadline": 5},
		{"assignee_id": true},
	} {
		body, _ := json.Marshal(payload)
		c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, body, admin)
		c.Params = gin.Params{{Key: "id", Value: task.ID}}

		suite.handler.UpdateTask(c)

		assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	}

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, "id = ?", task.ID).Error)
	assert.Equal(suite.T(), "Typed", stored.Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearDeadline() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	deadline := time.Now().Add(48 * time.Hour)
	task := suite.createTestTask("Deadline task", admin.ID, nil)
	suite.Require().NoError(suite.db.Model(task).Update("deadline", &deadline).Error)

	body, _ := json.Marshal(map[string]interface{}{"deadline": nil})
	c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, body, admin)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Nil(suite.T(), response.Deadline)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_CascadesComments() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	employee := suite.createTestUser("worker@example.com", models.RoleEmployee)
	task := suite.createTestTask("Doomed", admin.ID, &employee.ID)

	for i := 0; i < 3; i++ {
		comment := &models.Comment{TaskID: task.ID, AuthorID: employee.ID, Body: "note"}
		suite.Require().NoError(suite.db.Create(comment).Error)
	}

	c, w := suite.createAuthContext("DELETE", "/api/tasks/"+task.ID, nil, admin)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var taskCount int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&taskCount)
	assert.Equal(suite.T(), int64(0), taskCount)

	var commentCount int64
	suite.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&commentCount)
	assert.Equal(suite.T(), int64(0), commentCount)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_NotFound() {
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/missing", nil, admin)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
