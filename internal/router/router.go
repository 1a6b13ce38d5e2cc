package router

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"lunch/backend/foundation/web"
	"lunch/backend/internal/auth"
	"lunch/backend/internal/entity"
	"lunch/backend/internal/middleware"
	"lunch/backend/internal/pkg/config"
	"lunch/backend/internal/pkg/localtime"
	"lunch/backend/internal/pkg/lock"
	"lunch/backend/internal/pkg/repository/postgresql"
	"lunch/backend/internal/service"
	"lunch/backend/internal/service/backup"
	"lunch/backend/internal/service/importer"
	"lunch/backend/internal/service/registration"

	"lunch/backend/internal/controller/http/v1/file"
	"lunch/backend/internal/repository/postgres/attendance"
	"lunch/backend/internal/repository/postgres/controltype"
	"lunch/backend/internal/repository/postgres/department"
	importer_postgres "lunch/backend/internal/repository/postgres/importer"
	"lunch/backend/internal/repository/postgres/person"
	"lunch/backend/internal/repository/postgres/persontype"
	"lunch/backend/internal/repository/postgres/report"
	"lunch/backend/internal/repository/postgres/setting"
	"lunch/backend/internal/repository/postgres/user"

	attendance_controller "lunch/backend/internal/controller/http/v1/attendance"
	auth_controller "lunch/backend/internal/controller/http/v1/auth"
	backup_controller "lunch/backend/internal/controller/http/v1/backup"
	importer_controller "lunch/backend/internal/controller/http/v1/importer"
	person_controller "lunch/backend/internal/controller/http/v1/person"
	reference_controller "lunch/backend/internal/controller/http/v1/reference"
	report_controller "lunch/backend/internal/controller/http/v1/report"
	setting_controller "lunch/backend/internal/controller/http/v1/setting"
	user_controller "lunch/backend/internal/controller/http/v1/user"
)

type Router struct {
	*web.App
	postgresDB *postgresql.Database
	redisDB    *redis.Client
	cfg        *config.Config
	auth       *auth.Auth
	zone       localtime.Zone
}

// NewRouter wires the API onto app. redisDB may be nil.
func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *redis.Client,
	cfg *config.Config,
	auth *auth.Auth,
	zone localtime.Zone,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		cfg,
		auth,
		zone,
	}
}

// Routes registers every handler without starting the server.
func (r Router) Routes(ctx context.Context) error {

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CorsMiddleware(r.cfg.HTTP.AllowedOrigins))

	// - postgresql
	userPostgres := user.NewRepository(r.postgresDB)
	departmentPostgres := department.NewRepository(r.postgresDB)
	personTypePostgres := persontype.NewRepository(r.postgresDB)
	controlTypePostgres := controltype.NewRepository(r.postgresDB)
	personPostgres := person.NewRepository(r.postgresDB)
	settingPostgres := setting.NewRepository(r.postgresDB, r.redisDB)
	attendancePostgres := attendance.NewRepository(r.postgresDB, settingPostgres)
	reportPostgres := report.NewRepository(r.postgresDB, r.zone)
	importerPostgres := importer_postgres.NewRepository(r.postgresDB)

	// - services
	var registrationOpts []registration.Option
	if r.redisDB != nil {
		registrationOpts = append(registrationOpts, registration.WithLocker(lock.NewRedis(r.redisDB)))
	}
	registrationService := registration.NewService(attendancePostgres, r.zone, r.Log(), registrationOpts...)
	importerService := importer.NewService(importerPostgres, r.Log())
	uploader := service.NewUploader(r.cfg.UploadDir, r.Log())

	backupService, err := r.backupService(ctx)
	if err != nil {
		return err
	}

	// controller
	authController := auth_controller.NewController(userPostgres, r.auth)
	userController := user_controller.NewController(userPostgres)
	attendanceController := attendance_controller.NewController(registrationService)
	personController := person_controller.NewController(personPostgres, uploader)
	departmentController := reference_controller.NewController[entity.Department](departmentPostgres, func(id int, name string) entity.Department {
		return entity.Department{ID: id, Name: name}
	})
	personTypeController := reference_controller.NewController[entity.PersonType](personTypePostgres, func(id int, name string) entity.PersonType {
		return entity.PersonType{ID: id, Name: name}
	})
	controlTypeController := reference_controller.NewController[entity.ControlType](controlTypePostgres, func(id int, name string) entity.ControlType {
		return entity.ControlType{ID: id, Name: name}
	})
	importerController := importer_controller.NewController(importerService)
	reportController := report_controller.NewController(reportPostgres)
	settingController := setting_controller.NewController(settingPostgres, uploader)
	backupController := backup_controller.NewController(backupService)

	fileC := file.NewController(r.cfg.UploadDir)

	admin := middleware.Authenticate(r.auth, auth.RoleAdmin)
	signedIn := middleware.Authenticate(r.auth)

	// #auth
	r.Post("/api/v1/sign-in", authController.SignIn)
	r.Post("/api/v1/refresh-token", authController.RefreshToken)

	r.GET("/media/*filepath", fileC.File)
	r.HEAD("/media/*filepath", fileC.File)

	// #attendance
	r.Post("/api/v1/attendance/register", attendanceController.Register, signedIn)
	r.Get("/api/v1/attendance/today", attendanceController.GetToday, signedIn)
	r.Get("/api/v1/attendance/:id/ticket", attendanceController.GetTicket, signedIn)
	r.Delete("/api/v1/attendance/:id", attendanceController.Delete, admin)

	// #person
	r.Get("/api/v1/person/search", personController.Search, signedIn)
	r.Get("/api/v1/person/list", personController.GetList, admin)
	r.Get("/api/v1/person/qrcode_list", personController.GetQrCodeList, admin)
	r.Get("/api/v1/person/:id", personController.GetDetailById, admin)
	r.Get("/api/v1/person/:id/qrcode", personController.GetQrCode, admin)
	r.Post("/api/v1/person/create", personController.Create, admin)
	r.Post("/api/v1/person/:id/photo", personController.UploadPhoto, admin)
	r.Put("/api/v1/person/:id", personController.Update, admin)
	r.Delete("/api/v1/person/:id", personController.Delete, admin)

	// #department
	r.Get("/api/v1/department/list", departmentController.GetList, admin)
	r.Get("/api/v1/department/:id", departmentController.GetDetailById, admin)
	r.Post("/api/v1/department/save", departmentController.Save, admin)
	r.Delete("/api/v1/department/:id", departmentController.Delete, admin)

	// #person_type
	r.Get("/api/v1/person_type/list", personTypeController.GetList, admin)
	r.Get("/api/v1/person_type/:id", personTypeController.GetDetailById, admin)
	r.Post("/api/v1/person_type/save", personTypeController.Save, admin)
	r.Delete("/api/v1/person_type/:id", personTypeController.Delete, admin)

	// #control_type
	r.Get("/api/v1/control_type/list", controlTypeController.GetList, admin)
	r.Get("/api/v1/control_type/:id", controlTypeController.GetDetailById, admin)
	r.Post("/api/v1/control_type/save", controlTypeController.Save, admin)
	r.Delete("/api/v1/control_type/:id", controlTypeController.Delete, admin)

	// #import
	r.Get("/api/v1/import/template/:model", importerController.GetTemplate, admin)
	r.Post("/api/v1/import/students", importerController.ImportStudents, admin)
	r.Post("/api/v1/import/:model", importerController.Import, admin)

	// #report
	r.Post("/api/v1/report", reportController.GetList, signedIn)
	r.Post("/api/v1/report/export", reportController.Export, admin)

	// #settings
	r.Get("/api/v1/settings", settingController.GetInfo, admin)
	r.Put("/api/v1/settings", settingController.UpdateAll, admin)
	r.Post("/api/v1/settings/logo", settingController.UploadLogo, admin)

	// #user
	r.Get("/api/v1/user/list", userController.GetUserList, admin)
	r.Get("/api/v1/user/roles", userController.GetRoles, admin)
	r.Get("/api/v1/user/:id", userController.GetUserDetailById, admin)
	r.Post("/api/v1/user/save", userController.SaveUser, admin)
	r.Post("/api/v1/user/change_password", userController.ChangePassword, admin)
	r.Delete("/api/v1/user/:id", userController.DeleteUser, admin)

	// #backup
	r.Get("/api/v1/backup/list", backupController.GetList, admin)
	r.Post("/api/v1/backup/create", backupController.Create, admin)
	r.Get("/api/v1/backup/download", backupController.Download, admin)
	r.Post("/api/v1/restore/upload", backupController.RestoreUpload, admin)
	r.Post("/api/v1/restore/server/:name", backupController.RestoreFile, admin)

	return nil
}

// Init registers the routes and serves them on the configured port.
func (r Router) Init(ctx context.Context) error {
	if err := r.Routes(ctx); err != nil {
		return err
	}

	return r.Run(r.cfg.HTTP.Port)
}

func (r Router) backupService(ctx context.Context) (*backup.Service, error) {
	runner := backup.NewPgRunner(backup.Conn{
		Host:     r.cfg.DB.Host,
		Port:     r.cfg.DB.Port,
		User:     r.cfg.DB.Username,
		Password: r.cfg.DB.Password,
		Name:     r.cfg.DB.Name,
	}, r.cfg.PgDumpPath, r.cfg.PsqlPath)

	var opts []backup.Option
	if r.cfg.MinioEnabled() {
		mirror, err := backup.NewMinioMirror(ctx, backup.MinioConfig{
			Endpoint:  r.cfg.Minio.Endpoint,
			AccessKey: r.cfg.Minio.AccessKey,
			SecretKey: r.cfg.Minio.SecretKey,
			Bucket:    r.cfg.Minio.Bucket,
			UseSSL:    r.cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "connecting to minio")
		}
		opts = append(opts, backup.WithMirror(mirror))
	}

	return backup.NewService(r.cfg.BackupDir, runner, r.Log(), opts...), nil
}
