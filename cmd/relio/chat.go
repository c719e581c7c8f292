package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	reliosdk "github.com/relio-ai/relio-sdk-go"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <contact-id>",
		Short: "Interactive reply-suggestion session for one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID := args[0]
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = contactID
			}
			category := reliosdk.RelationshipCategory(mustFlagString(cmd, "category"))

			sys, err := buildSystem()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Println("输入对方的消息生成回复建议。命令: /like <n>, /dislike <n>, /clear <n>, /quit")
			return chatLoop(ctx, sys, contactID, name, category)
		},
	}
	cmd.Flags().String("name", "", "Contact display name.")
	cmd.Flags().String("category", string(reliosdk.CategoryFriend), "Relationship category.")
	return cmd
}

func chatLoop(ctx context.Context, sys *reliosdk.System, contactID, name string, category reliosdk.RelationshipCategory) error {
	scanner := bufio.NewScanner(os.Stdin)
	var last *reliosdk.ProcessResult

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		if strings.HasPrefix(line, "/") {
			if err := handleFeedback(sys, contactID, last, line); err != nil {
				fmt.Fprintf(os.Stderr, "错误: %v\n", err)
			}
			continue
		}

		result, err := sys.ProcessMessage(ctx, contactID, name, category, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
			continue
		}
		last = result
		printResult(result)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func handleFeedback(sys *reliosdk.System, contactID string, last *reliosdk.ProcessResult, line string) error {
	if last == nil || last.RoundID == "" {
		return fmt.Errorf("还没有可反馈的建议")
	}
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return fmt.Errorf("用法: %s <n>", parts[0])
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 || n > len(last.Suggestions) {
		return fmt.Errorf("建议编号应在 1-%d", len(last.Suggestions))
	}

	var fb reliosdk.Feedback
	switch parts[0] {
	case "/like":
		fb = reliosdk.FeedbackLike
	case "/dislike":
		fb = reliosdk.FeedbackDislike
	case "/clear":
		fb = reliosdk.FeedbackNone
	default:
		return fmt.Errorf("未知命令 %s", parts[0])
	}

	result, err := sys.Feedback(contactID, last.RoundID, last.Suggestions[n-1].MessageID, fb)
	if err != nil {
		return err
	}
	fmt.Printf("亲密度 %d (%+d) %s\n", result.Score, result.Delta, result.Detail)
	return nil
}

func printResult(r *reliosdk.ProcessResult) {
	for i, s := range r.Suggestions {
		fmt.Printf("  [%d] (%s) %s\n", i+1, s.Strategy, s.Text)
	}
	if r.Fallback {
		fmt.Println("  (生成服务不可用，已使用兜底回复)")
		return
	}
	fmt.Printf("  亲密度 %d · %s · 阶段 %s · 置信度 %.2f\n",
		r.Intimacy, r.StageNative, r.Relationship, r.Confidence)
}

func mustFlagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
