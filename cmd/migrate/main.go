// Package main 数据库迁移工具
package main

import (
	"context"
	"flag"
	"log"

	"github.com/pu-ac-cn/rbac-backend/internal/config"
	"github.com/pu-ac-cn/rbac-backend/internal/database"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "", "配置文件路径")
	seed := flag.Bool("seed", true, "写入内置权限")
	flag.Parse()

	// 加载配置
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()
	log.Println("数据库连接成功")

	log.Println("开始执行数据库迁移...")
	if err := database.AutoMigrate(database.Models()...); err != nil {
		log.Fatalf("迁移失败: %v", err)
	}
	log.Println("数据库迁移完成！")

	log.Println("已创建/更新的表:")
	log.Println("  - user_infos (员工表)")
	log.Println("  - roles (角色表)")
	log.Println("  - permissions (权限表)")
	log.Println("  - user_roles (用户角色关联表)")
	log.Println("  - role_permissions (角色权限关联表)")

	if !*seed {
		return
	}
	created, err := service.SeedPermissions(context.Background(), repository.NewPermissionRepository(database.GetDB()))
	if err != nil {
		log.Fatalf("写入内置权限失败: %v", err)
	}
	log.Printf("内置权限写入完成，新增 %d 条", created)
}
