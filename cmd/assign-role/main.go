// 为员工分配角色的工具，未指定角色时分配内置的系统管理员角色
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pu-ac-cn/rbac-backend/internal/config"
	"github.com/pu-ac-cn/rbac-backend/internal/database"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
)

func main() {
	roleName := flag.String("role", "", "角色名称，缺省为系统管理员")
	activate := flag.Bool("activate", true, "同时激活被冻结的账号，冻结账号不持有任何权限")
	flag.Usage = func() {
		fmt.Println("用法: assign-role [-role 角色名称] <用户名或邮箱>")
		fmt.Println("示例: assign-role admin")
		fmt.Println("示例: assign-role -role 研发 zhangsan")
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	account := flag.Arg(0)

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(database.GetDB())
	roleRepo := repository.NewRoleRepository(database.GetDB())
	permRepo := repository.NewPermissionRepository(database.GetDB())

	// 查找用户
	user, err := userRepo.FirstBy(ctx, repository.FieldUserName, account, 0)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = userRepo.FirstBy(ctx, repository.FieldEmail, account, 0)
	}
	if err != nil {
		log.Fatalf("用户不存在: %s", account)
	}

	var role *model.Role
	if *roleName == "" {
		// 确保内置权限和系统管理员角色已初始化
		if _, err := service.SeedPermissions(ctx, permRepo); err != nil {
			log.Fatalf("初始化内置权限失败: %v", err)
		}
		role, err = service.EnsureAdminRole(ctx, roleRepo, permRepo, 0)
		if err != nil {
			log.Fatalf("初始化系统管理员角色失败: %v", err)
		}
	} else {
		role, err = roleRepo.GetByName(ctx, *roleName)
		if err != nil {
			log.Fatalf("角色不存在: %s", *roleName)
		}
	}

	if err := service.AssignRole(ctx, userRepo, user, role, 0); err != nil {
		log.Fatalf("分配角色失败: %v", err)
	}

	if !user.IsValid() {
		if *activate {
			if err := userRepo.UpdateStatus(ctx, user.ID, model.StatusValid, 0); err != nil {
				log.Fatalf("激活账号失败: %v", err)
			}
			fmt.Printf("已激活账号 %s\n", user.UserName)
		} else {
			fmt.Printf("注意: 账号 %s 处于冻结状态，激活前角色不生效\n", user.UserName)
		}
	}

	fmt.Printf("成功为用户 %s (%s) 分配角色 %s\n", user.UserName, user.Email, role.Name)
}
